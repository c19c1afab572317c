// Package intersects writes the append-only intersects file: one labeled
// text line per classified read.
package intersects

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures an intersects Writer.
type Option func(*Writer)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(w *Writer) { w.bufSize = bytes }
}

// Writer appends intersects lines to a file with buffered I/O. Records are
// never revisited once written.
type Writer struct {
	w       *bufio.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	bufSize int
}

// New creates an intersects writer appending to path.
func New(path string, opts ...Option) (*Writer, error) {
	w := &Writer{path: path, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(w)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("intersects: open %s: %w", path, err)
	}
	w.f = f
	w.w = bufio.NewWriterSize(f, w.bufSize)
	return w, nil
}

// Write appends one classification line.
func (w *Writer) Write(_ context.Context, c model.Classification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.WriteString(output.FormatLine(c) + "\n"); err != nil {
		return fmt.Errorf("intersects: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("intersects: flush: %w", err)
	}
	return w.f.Close()
}
