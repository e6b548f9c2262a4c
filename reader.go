package zipkit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/zipkit/store"
)

// Unzip reads an existing ZIP archive from a file or from in-memory
// bytes. The entry catalog is populated once on open by parsing the
// central directory; entry data is decompressed lazily on extraction.
// An Unzip is not internally synchronized.
type Unzip struct {
	a *archive
}

// Open creates an unzipper for a file.
func Open(path string) (*Unzip, error) {
	st, err := store.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, wrapErr("open", path, ErrNotFound)
		}
		return nil, wrapErr("open", path, err)
	}
	a, err := openArchive(st)
	if err != nil {
		st.Close()
		return nil, wrapErr("open", path, err)
	}
	return &Unzip{a: a}, nil
}

// OpenBytes creates an unzipper for in-memory data, such as the
// snapshot returned by Zip.Data after finalizing.
func OpenBytes(data []byte) (*Unzip, error) {
	a, err := openArchive(store.NewMemoryBytes(data))
	if err != nil {
		return nil, wrapErr("open", "<memory>", err)
	}
	return &Unzip{a: a}, nil
}

// Path returns the path to the zip being read, or an empty string if
// the zip was opened in memory.
func (u *Unzip) Path() string {
	return u.a.st.Path()
}

// Comment returns the archive comment from the end-of-central-
// directory record.
func (u *Unzip) Comment() string {
	return u.a.comment
}

// Entries returns all entry names in central directory order. The
// result is a fresh slice on every call.
func (u *Unzip) Entries() []string {
	names := make([]string, len(u.a.entries))
	for i, e := range u.a.entries {
		names[i] = e.Name
	}
	return names
}

// Entry returns the catalog record for a name, if present.
func (u *Unzip) Entry(name string) (Entry, bool) {
	e, ok := u.a.lookup(name)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// HasEntry checks if the zip has an entry. The name is normalized
// before matching, so "a/b.txt" and "./a//b.txt" are the same entry.
func (u *Unzip) HasEntry(name string) bool {
	_, ok := u.a.lookup(name)
	return ok
}

// Extract extracts an entry to memory, verifying its checksum.
func (u *Unzip) Extract(name string) ([]byte, error) {
	e, ok := u.a.lookup(name)
	if !ok {
		return nil, wrapErr("extract", name, ErrNotFound)
	}
	data, err := u.a.extract(e)
	if err != nil {
		return nil, wrapErr("extract", name, err)
	}
	return data, nil
}

// ExtractTo extracts an entry to a file on disk, creating parent
// directories as needed.
func (u *Unzip) ExtractTo(name string, dest string) error {
	data, err := u.Extract(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return wrapErr("extractto", dest, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return wrapErr("extractto", dest, err)
	}
	return nil
}

// ExtractAllTo extracts every entry under dir, recreating directory
// entries and writing file entries at their relative paths. All entry
// names are validated up front: if any entry would resolve outside
// dir, the whole extraction is aborted with ErrPathTraversal before
// anything is written, so a hostile archive is never partially
// trusted.
func (u *Unzip) ExtractAllTo(dir string) error {
	type target struct {
		entry *Entry
		dest  string
	}
	targets := make([]target, 0, len(u.a.entries))
	for _, e := range u.a.entries {
		norm, err := normalizeName(e.Name)
		if err != nil {
			return wrapErr("extractall", e.Name, ErrPathTraversal)
		}
		dest := filepath.Join(dir, filepath.FromSlash(norm))
		if !withinDir(dir, dest) {
			return wrapErr("extractall", e.Name, ErrPathTraversal)
		}
		targets = append(targets, target{entry: e, dest: dest})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapErr("extractall", dir, err)
	}
	for _, t := range targets {
		if t.entry.Kind == KindDir {
			if err := os.MkdirAll(t.dest, 0o755); err != nil {
				return wrapErr("extractall", t.dest, err)
			}
			continue
		}
		data, err := u.a.extract(t.entry)
		if err != nil {
			return wrapErr("extractall", t.entry.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(t.dest), 0o755); err != nil {
			return wrapErr("extractall", t.dest, err)
		}
		if err := os.WriteFile(t.dest, data, 0o644); err != nil {
			return wrapErr("extractall", t.dest, err)
		}
	}
	return nil
}

// Checksum extracts an entry and returns the hex-encoded checksum of
// its uncompressed bytes under the given algorithm.
func (u *Unzip) Checksum(name string, algorithm ChecksumAlgorithm) (string, error) {
	data, err := u.Extract(name)
	if err != nil {
		return "", err
	}
	sum, err := CalculateChecksum(bytes.NewReader(data), algorithm)
	if err != nil {
		return "", wrapErr("checksum", name, err)
	}
	return sum, nil
}

// Close releases the backing store. The handle opened by Open is
// released exactly once, across all exit paths.
func (u *Unzip) Close() error {
	return u.a.close()
}

// IntoDir unzips a file into a directory, optionally deleting the zip
// after extracting it successfully.
func IntoDir(from string, to string, deleteZipAfter bool) error {
	uz, err := Open(from)
	if err != nil {
		return err
	}
	if err := uz.ExtractAllTo(to); err != nil {
		uz.Close()
		return err
	}
	if err := uz.Close(); err != nil {
		return err
	}
	if deleteZipAfter {
		if err := os.Remove(from); err != nil {
			return wrapErr("intodir", from, err)
		}
	}
	return nil
}

// withinDir guards against extraction targets that escape dir even
// after name normalization, e.g. via platform-specific separators.
func withinDir(dir, dest string) bool {
	rel, err := filepath.Rel(dir, dest)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
