package zipkit

import (
	"errors"
	"fmt"
)

// Common archive errors
var (
	ErrNotFound         = errors.New("file does not exist")
	ErrNotAFile         = errors.New("not a file")
	ErrNotADirectory    = errors.New("not a directory")
	ErrInvalidName      = errors.New("invalid entry name")
	ErrMalformedArchive = errors.New("malformed archive")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrPathTraversal    = errors.New("entry path escapes destination")
	ErrAlreadyFinalized = errors.New("archive already finalized")
	ErrNotFinalized     = errors.New("archive not finalized")
	ErrNotInMemory      = errors.New("archive is not in memory")
	ErrNotSupported     = errors.New("operation not supported")
)

// ArchiveError records an error and the operation and entry or file
// path that caused it
type ArchiveError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *ArchiveError) Unwrap() error {
	return e.Err
}

func wrapErr(op, path string, err error) error {
	return &ArchiveError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether an error indicates that a file, directory
// or archive entry does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformed reports whether an error indicates structural corruption
// detected while opening an archive
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedArchive)
}

// IsChecksumMismatch reports whether an error indicates that entry data
// failed checksum verification on extraction
func IsChecksumMismatch(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}

// IsPathTraversal reports whether an error indicates a hostile entry
// name that would resolve outside the extraction directory
func IsPathTraversal(err error) bool {
	return errors.Is(err, ErrPathTraversal)
}
