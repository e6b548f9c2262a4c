package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	t.Run("append returns offsets", func(t *testing.T) {
		m := NewMemory()
		off, err := m.Append([]byte("hello"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if off != 0 {
			t.Errorf("expected offset 0, got %d", off)
		}
		off, err = m.Append([]byte(" world"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if off != 5 {
			t.Errorf("expected offset 5, got %d", off)
		}
		if m.Size() != 11 {
			t.Errorf("expected size 11, got %d", m.Size())
		}
	})

	t.Run("read at", func(t *testing.T) {
		m := NewMemoryBytes([]byte("hello world"))
		got, err := m.ReadAt(6, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "world" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("read out of bounds", func(t *testing.T) {
		m := NewMemoryBytes([]byte("abc"))
		if _, err := m.ReadAt(1, 5); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
		if _, err := m.ReadAt(-1, 1); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		m := NewMemoryBytes([]byte("abc"))
		snap, err := m.Snapshot()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		snap[0] = 'X'
		again, err := m.Snapshot()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again[0] != 'a' {
			t.Error("snapshot mutation leaked into the store")
		}
	})

	t.Run("seeded store does not retain caller slice", func(t *testing.T) {
		src := []byte("abc")
		m := NewMemoryBytes(src)
		src[0] = 'X'
		got, _ := m.ReadAt(0, 1)
		if got[0] != 'a' {
			t.Error("store retained the caller's slice")
		}
	})

	t.Run("identity", func(t *testing.T) {
		m := NewMemory()
		if !m.InMemory() {
			t.Error("expected InMemory")
		}
		if m.Path() != "" {
			t.Errorf("expected empty path, got %q", m.Path())
		}
	})

	t.Run("closed store rejects operations", func(t *testing.T) {
		m := NewMemory()
		if err := m.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if _, err := m.Append([]byte("x")); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
		if _, err := m.ReadAt(0, 0); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}

func TestFileStore(t *testing.T) {
	t.Run("create append read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob")
		f, err := CreateFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()

		if f.Path() != path {
			t.Errorf("expected path %q, got %q", path, f.Path())
		}
		if f.InMemory() {
			t.Error("expected file store to not be in memory")
		}

		if _, err := f.Append([]byte("hello ")); err != nil {
			t.Fatalf("append: %v", err)
		}
		off, err := f.Append([]byte("world"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if off != 6 {
			t.Errorf("expected offset 6, got %d", off)
		}

		got, err := f.ReadAt(6, 5)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(got) != "world" {
			t.Errorf("got %q", got)
		}

		if err := f.Flush(); err != nil {
			t.Fatalf("flush: %v", err)
		}
		snap, err := f.Snapshot()
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if !bytes.Equal(snap, []byte("hello world")) {
			t.Errorf("snapshot = %q", snap)
		}
	})

	t.Run("open existing read only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob")
		if err := os.WriteFile(path, []byte("persisted"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()

		if f.Size() != int64(len("persisted")) {
			t.Errorf("expected size %d, got %d", len("persisted"), f.Size())
		}
		got, err := f.ReadAt(0, f.Size())
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(got) != "persisted" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("open missing file", func(t *testing.T) {
		_, err := OpenFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("read out of bounds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob")
		f, err := CreateFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()
		if _, err := f.ReadAt(0, 1); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})

	t.Run("close releases the handle once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob")
		f, err := CreateFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("second close should be a no-op, got %v", err)
		}
		if _, err := f.Append([]byte("x")); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}
