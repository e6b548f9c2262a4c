package zipkit

import (
	"path"
	"strings"
	"time"
)

// Kind distinguishes file entries from directory entries.
type Kind int

const (
	// KindFile is a regular entry carrying data.
	KindFile Kind = iota
	// KindDir is a directory entry. Directory entries carry no data
	// and are named with a trailing slash.
	KindDir
)

// Entry is one logical item in an archive.
type Entry struct {
	// Name is the normalized archive-relative path, forward-slash
	// separated with no leading slash. Directory entries end with "/".
	Name string

	// Kind is the entry kind.
	Kind Kind

	// Method is the compression method used for the entry data.
	Method Method

	// UncompressedSize and CompressedSize are the byte counts of the
	// entry data before and after compression.
	UncompressedSize uint32
	CompressedSize   uint32

	// CRC32 is the IEEE checksum of the uncompressed bytes, verified
	// on extraction.
	CRC32 uint32

	// Offset is the byte offset of the entry's local header within the
	// byte store. Valid once the archive is finalized or opened.
	Offset int64

	// Modified is the entry modification time, stored at two-second
	// MS-DOS resolution.
	Modified time.Time
}

// IsDir reports whether the entry is a directory entry.
func (e *Entry) IsDir() bool {
	return e.Kind == KindDir
}

// key returns the kind-qualified catalog uniqueness key: directory
// entries keep their trailing slash, so "a" (file) and "a/" (dir) are
// distinct entries.
func (e *Entry) key() string {
	return e.Name
}

// normalizeName converts name into canonical archive-entry form:
// forward slashes, no leading slash, no drive component, no "." or
// ".." segments. A trailing slash is preserved so callers can detect
// directory naming. Returns ErrInvalidName for empty names, names
// containing a NUL byte, and names that escape the archive root.
func normalizeName(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	if strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	n := strings.ReplaceAll(name, `\`, "/")
	// Reject Windows drive components outright; entry names are
	// archive-relative.
	if len(n) >= 2 && n[1] == ':' {
		return "", ErrInvalidName
	}
	trailingSlash := strings.HasSuffix(n, "/")
	n = path.Clean(n)
	n = strings.TrimPrefix(n, "/")
	if n == "" || n == "." {
		return "", ErrInvalidName
	}
	if n == ".." || strings.HasPrefix(n, "../") {
		return "", ErrInvalidName
	}
	if trailingSlash {
		n += "/"
	}
	return n, nil
}

// normalizeFileName is normalizeName constrained to file entries: a
// trailing slash is stripped rather than preserved.
func normalizeFileName(name string) (string, error) {
	n, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(n, "/"), nil
}

// normalizeDirName is normalizeName constrained to directory entries:
// the trailing slash convention is enforced.
func normalizeDirName(name string) (string, error) {
	n, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(n, "/") {
		n += "/"
	}
	return n, nil
}
