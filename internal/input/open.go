// Package input reads the two external inputs of the classifier: the read
// manifest and the tabular alignment hit stream. Both open plain or
// gzip-compressed files transparently.
package input

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		_ = g.f.Close()
		return err
	}
	return g.f.Close()
}

// Open opens path for reading, decompressing on the fly when it ends in .gz.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input: open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("input: gzip %s: %w", path, err)
	}
	return &gzipReadCloser{Reader: zr, f: f}, nil
}
