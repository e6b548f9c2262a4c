package zipkit

import (
	"time"

	"github.com/klauspost/compress/flate"
)

// Option represents a per-entry configuration option
type Option func(*Options)

// Options contains all possible options for adding entries
type Options struct {
	// Method is the compression method to use for the entry
	Method Method

	// Level is the deflate compression level (flate.BestSpeed through
	// flate.BestCompression, or flate.DefaultCompression)
	Level int

	// ModTime is the entry modification time. Zero means the writer's
	// creation time (or the source file's mtime for AddFrom/AddAllFrom)
	ModTime time.Time
}

func defaultOptions(cfg *Config) Options {
	opts := Options{
		Method: Deflate,
		Level:  flate.DefaultCompression,
	}
	if cfg != nil {
		if m, ok := methodByName(cfg.Method); ok {
			opts.Method = m
		}
		opts.Level = cfg.Level
	}
	return opts
}

func processOptions(defaults Options, options ...Option) Options {
	opts := defaults
	for _, option := range options {
		option(&opts)
	}
	return opts
}

func methodByName(name string) (Method, bool) {
	switch name {
	case "store":
		return Store, true
	case "deflate":
		return Deflate, true
	default:
		return 0, false
	}
}

// WithMethod sets the compression method for the entry
func WithMethod(m Method) Option {
	return func(o *Options) {
		o.Method = m
	}
}

// WithLevel sets the deflate compression level for the entry
func WithLevel(level int) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithModTime sets the modification time recorded for the entry
func WithModTime(t time.Time) Option {
	return func(o *Options) {
		o.ModTime = t
	}
}
