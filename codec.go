package zipkit

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// Method identifies a ZIP compression method.
type Method uint16

const (
	// Store writes entry data byte-identically, uncompressed.
	Store Method = 0
	// Deflate compresses entry data with the standard sliding-window
	// DEFLATE algorithm.
	Deflate Method = 8
)

// String returns the conventional method name.
func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// Compressor compresses data at the given deflate-style level (ignored
// by methods without levels).
type Compressor func(data []byte, level int) ([]byte, error)

// Decompressor decompresses data, enforcing that the result is exactly
// rawSize bytes long.
type Decompressor func(data []byte, rawSize int) ([]byte, error)

type codec struct {
	compress   Compressor
	decompress Decompressor
}

var (
	codecMu sync.RWMutex
	codecs  = map[Method]codec{
		Store:   {compress: storeCompress, decompress: storeDecompress},
		Deflate: {compress: deflateCompress, decompress: deflateDecompress},
	}
)

// RegisterMethod registers a compressor/decompressor pair for a
// method, replacing any previous registration. Store and Deflate are
// registered by default.
func RegisterMethod(m Method, comp Compressor, decomp Decompressor) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecs[m] = codec{compress: comp, decompress: decomp}
}

func lookupMethod(m Method) (codec, error) {
	codecMu.RLock()
	c, ok := codecs[m]
	codecMu.RUnlock()
	if !ok {
		return codec{}, fmt.Errorf("%w: compression method %s", ErrNotSupported, m)
	}
	return c, nil
}

// compressData compresses data per method.
func compressData(data []byte, m Method, level int) ([]byte, error) {
	c, err := lookupMethod(m)
	if err != nil {
		return nil, err
	}
	return c.compress(data, level)
}

// decompressData decompresses data per method. Fails with
// ErrMalformedArchive if the declared uncompressed size does not match
// the actual decompressed length.
func decompressData(data []byte, m Method, rawSize int) ([]byte, error) {
	c, err := lookupMethod(m)
	if err != nil {
		return nil, err
	}
	return c.decompress(data, rawSize)
}

func storeCompress(data []byte, _ int) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func storeDecompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) != rawSize {
		return nil, fmt.Errorf("%w: stored entry is %d bytes, expected %d",
			ErrMalformedArchive, len(data), rawSize)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func deflateCompress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		fw.Close()
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

func deflateDecompress(data []byte, rawSize int) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	out := make([]byte, 0, rawSize)
	buf := bytes.NewBuffer(out)
	n, err := io.Copy(buf, io.LimitReader(fr, int64(rawSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrMalformedArchive, err)
	}
	if n != int64(rawSize) {
		return nil, fmt.Errorf("%w: inflated to %d bytes, expected %d",
			ErrMalformedArchive, n, rawSize)
	}
	return buf.Bytes(), nil
}
