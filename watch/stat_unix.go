//go:build unix

package watch

import (
	"fmt"
	"os"
	"syscall"
)

// fileID identifies a filesystem object by device and inode, so
// different paths resolving to the same file compare equal.
type fileID struct {
	dev uint64
	ino uint64
}

func statID(path string) (fileID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileID{}, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, fmt.Errorf("stat %s: no Stat_t", path)
	}
	return fileID{dev: uint64(stat.Dev), ino: stat.Ino}, nil
}
