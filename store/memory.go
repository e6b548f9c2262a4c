package store

// Memory is an in-memory Store. Useful for building archives that are
// never persisted, and for tests.
type Memory struct {
	buf    []byte
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryBytes creates an in-memory store seeded with data. The
// store takes ownership of its own copy; the caller's slice is not
// retained.
func NewMemoryBytes(data []byte) *Memory {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Memory{buf: buf}
}

// Append implements Store.
func (m *Memory) Append(p []byte) (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	off := int64(len(m.buf))
	m.buf = append(m.buf, p...)
	return off, nil
}

// ReadAt implements Store.
func (m *Memory) ReadAt(off, n int64) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off+n > int64(len(m.buf)) {
		return nil, boundsErr(off, n, int64(len(m.buf)))
	}
	out := make([]byte, n)
	copy(out, m.buf[off:off+n])
	return out, nil
}

// Size implements Store.
func (m *Memory) Size() int64 {
	return int64(len(m.buf))
}

// Flush implements Store. No-op for memory stores.
func (m *Memory) Flush() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Snapshot implements Store. The returned slice is a copy; mutating it
// does not affect the store.
func (m *Memory) Snapshot() ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out, nil
}

// Path implements Store. Always empty for memory stores.
func (m *Memory) Path() string {
	return ""
}

// InMemory implements Store.
func (m *Memory) InMemory() bool {
	return true
}

// Close implements Store.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}

var _ Store = (*Memory)(nil)
