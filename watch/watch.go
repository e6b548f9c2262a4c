// Package watch dispatches typed events when watched files are
// modified on disk. Watch identity is filesystem-object identity
// rather than path equality: two different path strings that resolve
// to the same file collapse to one watch and one listener dispatch.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by operations on a closed Watcher.
var ErrClosed = errors.New("watcher already closed")

// Event is emitted when a watched file is modified. Path is the path
// the file was originally watched under.
type Event struct {
	Path string
}

// Listener receives file-change events. Listeners are invoked on the
// watcher's dispatch goroutine and must not block.
type Listener func(Event)

type watched struct {
	path string // path registered with fsnotify, also reported in events
	id   fileID
}

// Watcher watches files for modification and dispatches Events to
// subscribed listeners.
type Watcher struct {
	mu        sync.Mutex
	fsw       *fsnotify.Watcher
	files     map[fileID]*watched
	listeners []Listener
	closed    bool
	done      chan struct{}
}

// New creates a Watcher and starts its dispatch goroutine.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fsw:   fsw,
		files: make(map[fileID]*watched),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.dispatch(event.Name)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Transport errors carry no path to dispatch for; the
			// affected watch stays registered.
		}
	}
}

func (w *Watcher) dispatch(name string) {
	w.mu.Lock()
	var path string
	if id, err := statID(name); err == nil {
		if f, ok := w.files[id]; ok {
			path = f.path
		}
	}
	if path == "" {
		// Fall back to path comparison for files replaced by rename,
		// where the new object has a fresh identity.
		clean := filepath.Clean(name)
		for _, f := range w.files {
			if filepath.Clean(f.path) == clean {
				path = f.path
				break
			}
		}
	}
	listeners := make([]Listener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	if path == "" {
		return
	}
	for _, l := range listeners {
		if l != nil {
			l(Event{Path: path})
		}
	}
}

// Watch starts watching a file for modification. Watching an object
// that is already watched under another path is a no-op.
func (w *Watcher) Watch(path string) error {
	id, err := statID(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, ok := w.files[id]; ok {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w.files[id] = &watched{path: path, id: id}
	return nil
}

// Unwatch stops watching a file. The path is resolved to its
// filesystem object, so any path naming the watched object works.
func (w *Watcher) Unwatch(path string) {
	id, err := statID(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[id]
	if !ok {
		return
	}
	delete(w.files, id)
	w.fsw.Remove(f.path)
}

// Subscribe registers a listener for file-change events and returns a
// function that unregisters it.
func (w *Watcher) Subscribe(l Listener) (unsubscribe func()) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	index := len(w.listeners) - 1
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if index < len(w.listeners) {
			// Set to nil instead of removing to avoid index shifting
			w.listeners[index] = nil
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

var (
	defaultMu      sync.Mutex
	defaultWatcher *Watcher
)

func sharedWatcher() (*Watcher, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultWatcher == nil {
		w, err := New()
		if err != nil {
			return nil, err
		}
		defaultWatcher = w
	}
	return defaultWatcher, nil
}

// Watch watches a file on the shared package-level watcher.
func Watch(path string) error {
	w, err := sharedWatcher()
	if err != nil {
		return err
	}
	return w.Watch(path)
}

// Unwatch stops watching a file on the shared package-level watcher.
func Unwatch(path string) {
	defaultMu.Lock()
	w := defaultWatcher
	defaultMu.Unlock()
	if w != nil {
		w.Unwatch(path)
	}
}

// Subscribe registers a listener on the shared package-level watcher.
func Subscribe(l Listener) (unsubscribe func(), err error) {
	w, err := sharedWatcher()
	if err != nil {
		return nil, err
	}
	return w.Subscribe(l), nil
}
