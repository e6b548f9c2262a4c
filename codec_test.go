package zipkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/flate"
)

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":      {},
		"short":      []byte("hello world"),
		"repetitive": bytes.Repeat([]byte("zipkit "), 1024),
	}

	for _, method := range []Method{Store, Deflate} {
		for name, data := range payloads {
			t.Run(method.String()+"/"+name, func(t *testing.T) {
				compressed, err := compressData(data, method, flate.DefaultCompression)
				if err != nil {
					t.Fatalf("compress: %v", err)
				}
				got, err := decompressData(compressed, method, len(data))
				if err != nil {
					t.Fatalf("decompress: %v", err)
				}
				if !bytes.Equal(got, data) {
					t.Errorf("round trip changed data: got %d bytes, want %d", len(got), len(data))
				}
			})
		}
	}
}

func TestCodecSizeMismatch(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		_, err := decompressData([]byte("abcdef"), Store, 3)
		if !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})

	t.Run("deflate declared too small", func(t *testing.T) {
		compressed, err := compressData([]byte("hello world"), Deflate, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		_, err = decompressData(compressed, Deflate, 4)
		if !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})

	t.Run("deflate declared too large", func(t *testing.T) {
		compressed, err := compressData([]byte("hi"), Deflate, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		_, err = decompressData(compressed, Deflate, 100)
		if !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})
}

func TestCodecUnknownMethod(t *testing.T) {
	_, err := compressData([]byte("x"), Method(99), 0)
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestDeflateRespectsLevel(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 4096)
	fast, err := compressData(data, Deflate, flate.BestSpeed)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	best, err := compressData(data, Deflate, flate.BestCompression)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	for _, out := range [][]byte{fast, best} {
		got, err := decompressData(out, Deflate, len(data))
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Error("level round trip changed data")
		}
	}
}
