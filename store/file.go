package store

import (
	"fmt"
	"io"
	"os"
)

// File is a Store backed by a file on disk. Bytes are written through
// the operating system incrementally; Flush syncs them to stable
// storage.
type File struct {
	f    *os.File
	path string
	size int64
}

// CreateFile creates (or truncates) a file-backed store at path.
func CreateFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return &File{f: f, path: path}, nil
}

// OpenFile opens an existing file as a read-only store.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat store: %w", err)
	}
	return &File{f: f, path: path, size: info.Size()}, nil
}

// Append implements Store.
func (s *File) Append(p []byte) (int64, error) {
	if s.f == nil {
		return 0, ErrClosed
	}
	off := s.size
	if _, err := s.f.WriteAt(p, off); err != nil {
		return 0, fmt.Errorf("append store: %w", err)
	}
	s.size += int64(len(p))
	return off, nil
}

// ReadAt implements Store.
func (s *File) ReadAt(off, n int64) ([]byte, error) {
	if s.f == nil {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off+n > s.size {
		return nil, boundsErr(off, n, s.size)
	}
	out := make([]byte, n)
	if _, err := s.f.ReadAt(out, off); err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	return out, nil
}

// Size implements Store.
func (s *File) Size() int64 {
	return s.size
}

// Flush implements Store, syncing written bytes to disk.
func (s *File) Flush() error {
	if s.f == nil {
		return ErrClosed
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	return nil
}

// Snapshot implements Store by reading the whole backing file.
func (s *File) Snapshot() ([]byte, error) {
	if s.f == nil {
		return nil, ErrClosed
	}
	out := make([]byte, s.size)
	if s.size == 0 {
		return out, nil
	}
	if _, err := s.f.ReadAt(out, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	return out, nil
}

// Path implements Store.
func (s *File) Path() string {
	return s.path
}

// InMemory implements Store.
func (s *File) InMemory() bool {
	return false
}

// Close implements Store. The file handle is released exactly once.
func (s *File) Close() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

var _ Store = (*File)(nil)
