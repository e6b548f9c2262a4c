//go:build windows

package watch

import (
	"os"
	"path/filepath"
	"strings"
)

// fileID identifies a filesystem object. Windows exposes no stable
// inode through os.FileInfo, so identity falls back to the absolute
// resolved path, case-folded.
type fileID struct {
	path string
}

func statID(path string) (fileID, error) {
	if _, err := os.Stat(path); err != nil {
		return fileID{}, err
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fileID{}, err
	}
	return fileID{path: strings.ToLower(filepath.Clean(abs))}, nil
}
