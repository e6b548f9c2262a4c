package zipkit

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gobeaver/zipkit/store"
)

// Zip builds a ZIP archive, backed either by a file on disk or by an
// in-memory buffer. It is not internally synchronized; concurrent use
// of one Zip must be serialized by the caller.
//
// A Zip must be finalized explicitly with Finalize before the archive
// is readable. Closing or dropping an unfinalized Zip leaves any bytes
// already flushed to disk as a partial file.
type Zip struct {
	a        *archive
	defaults Options
	created  time.Time
}

var loadDefaultConfig = sync.OnceValue(func() *Config {
	cfg, err := GetConfig()
	if err != nil {
		return nil
	}
	return cfg
})

func newZip(st store.Store) *Zip {
	cfg := loadDefaultConfig()
	z := &Zip{
		a:        newArchive(st),
		defaults: defaultOptions(cfg),
		created:  time.Now(),
	}
	if cfg != nil {
		z.a.comment = cfg.Comment
	}
	return z
}

// Create creates a zipper writing to a file at path.
func Create(path string) (*Zip, error) {
	st, err := store.CreateFile(path)
	if err != nil {
		return nil, wrapErr("create", path, err)
	}
	return newZip(st), nil
}

// CreateInMemory creates a zipper building the archive in memory.
func CreateInMemory() *Zip {
	return newZip(store.NewMemory())
}

// Path returns the path to the zip being created, or an empty string
// if the zip is built in memory.
func (z *Zip) Path() string {
	return z.a.st.Path()
}

// Data returns a snapshot of the zipped bytes written so far. Only
// valid for in-memory archives; for file-backed archives it fails with
// ErrNotInMemory rather than double-buffering the whole file.
func (z *Zip) Data() ([]byte, error) {
	if !z.a.st.InMemory() {
		return nil, ErrNotInMemory
	}
	return z.a.st.Snapshot()
}

// SetComment sets the archive comment written at finalize.
func (z *Zip) SetComment(comment string) error {
	if z.a.finalized {
		return ErrAlreadyFinalized
	}
	if len(comment) > 1<<16-1 {
		return fmt.Errorf("%w: comment exceeds 64 KiB", ErrNotSupported)
	}
	z.a.comment = comment
	return nil
}

// Add adds an entry to the zip with data.
func (z *Zip) Add(entry string, data []byte, options ...Option) error {
	opts := processOptions(z.defaults, options...)
	if opts.ModTime.IsZero() {
		opts.ModTime = z.created
	}
	if err := z.a.add(entry, KindFile, data, opts); err != nil {
		return wrapErr("add", entry, err)
	}
	return nil
}

// AddString adds an entry to the zip with string data.
func (z *Zip) AddString(entry string, data string, options ...Option) error {
	return z.Add(entry, []byte(data), options...)
}

// AddFrom adds an entry from a file on disk, placed under entryDir
// with the file's base name. To add a file under a different name,
// read it into memory and use Add.
func (z *Zip) AddFrom(file string, entryDir string, options ...Option) error {
	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wrapErr("addfrom", file, ErrNotFound)
		}
		return wrapErr("addfrom", file, err)
	}
	if info.IsDir() {
		return wrapErr("addfrom", file, ErrNotAFile)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return wrapErr("addfrom", file, err)
	}

	entry := path.Join(filepath.ToSlash(entryDir), filepath.Base(file))
	opts := append([]Option{WithModTime(info.ModTime())}, options...)
	return z.Add(entry, data, opts...)
}

// AddAllFrom recursively adds a directory on disk. Every descendant
// file is added at its path relative to dir's parent, and every
// descendant directory, including empty ones, gets a directory entry
// so it survives a round trip. Traversal uses an explicit work list
// with lexicographic order per directory level, so the archive bytes
// are reproducible for a fixed filesystem snapshot. A failure partway
// through leaves the entries added so far in place.
func (z *Zip) AddAllFrom(dir string, options ...Option) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wrapErr("addallfrom", dir, ErrNotFound)
		}
		return wrapErr("addallfrom", dir, err)
	}
	if !info.IsDir() {
		return wrapErr("addallfrom", dir, ErrNotADirectory)
	}

	root := filepath.Clean(dir)
	type workItem struct {
		abs string // directory on disk
		rel string // entry path in the zip
	}
	work := []workItem{{abs: root, rel: filepath.Base(root)}}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		if err := z.AddFolder(item.rel); err != nil {
			return err
		}

		dirents, err := os.ReadDir(item.abs)
		if err != nil {
			return wrapErr("addallfrom", item.abs, err)
		}
		// os.ReadDir sorts by name; collect subdirectories and push
		// them in reverse so the stack pops them in lexicographic
		// order.
		var subdirs []workItem
		for _, de := range dirents {
			abs := filepath.Join(item.abs, de.Name())
			rel := path.Join(item.rel, de.Name())
			if de.IsDir() {
				subdirs = append(subdirs, workItem{abs: abs, rel: rel})
				continue
			}
			info, err := os.Stat(abs)
			if err != nil {
				return wrapErr("addallfrom", abs, err)
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				return wrapErr("addallfrom", abs, err)
			}
			opts := append([]Option{WithModTime(info.ModTime())}, options...)
			if err := z.Add(rel, data, opts...); err != nil {
				return err
			}
		}
		sort.Slice(subdirs, func(i, j int) bool { return subdirs[i].rel > subdirs[j].rel })
		work = append(work, subdirs...)
	}
	return nil
}

// AddFolder adds a zero-length directory entry, independent of disk
// state. To add a folder from disk, use AddAllFrom.
func (z *Zip) AddFolder(entry string) error {
	opts := z.defaults
	opts.ModTime = z.created
	if err := z.a.add(entry, KindDir, nil, opts); err != nil {
		return wrapErr("addfolder", entry, err)
	}
	return nil
}

// Finalize seals the archive by writing the central directory and
// end-of-central-directory record. It may be called once; further
// entry addition fails with ErrAlreadyFinalized. Finalize is never
// implicit: Close without Finalize leaves the archive unreadable.
func (z *Zip) Finalize() error {
	if err := z.a.finalize(); err != nil {
		return wrapErr("finalize", z.Path(), err)
	}
	return nil
}

// Close releases the backing store. It does not finalize the archive.
func (z *Zip) Close() error {
	return z.a.close()
}
