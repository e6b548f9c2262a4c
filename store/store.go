// Package store provides the byte store backends an archive is built
// on: a growable binary blob backed either by a file on disk or by an
// in-memory buffer. All container I/O in zipkit goes through a Store.
package store

import (
	"errors"
	"fmt"
)

// Common store errors
var (
	ErrOutOfBounds = errors.New("read out of bounds")
	ErrClosed      = errors.New("store already closed")
)

// Store abstracts a growable binary blob. Stores are exclusively owned
// by a single archive and are not internally synchronized.
type Store interface {
	// Append writes p at the end of the store and returns the offset
	// at which it was written.
	Append(p []byte) (int64, error)

	// ReadAt reads n bytes starting at off. Fails if the range is out
	// of bounds or the backing file is unreadable.
	ReadAt(off, n int64) ([]byte, error)

	// Size returns the current content length in bytes.
	Size() int64

	// Flush makes appended bytes durable. No-op for in-memory stores.
	Flush() error

	// Snapshot copies out the current content. For file-backed stores
	// this reads the whole file.
	Snapshot() ([]byte, error)

	// Path returns the backing file path, or "" for in-memory stores.
	Path() string

	// InMemory reports whether the store keeps its bytes in memory.
	InMemory() bool

	// Close releases the backing resources. Safe to call once.
	Close() error
}

func boundsErr(off, n, size int64) error {
	return fmt.Errorf("%w: [%d,%d) of %d", ErrOutOfBounds, off, off+n, size)
}
