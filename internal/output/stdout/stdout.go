package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/output"
)

// Output writes intersects-formatted lines to stdout.
type Output struct {
	w io.Writer
}

// New creates a stdout Output.
func New() *Output {
	return &Output{w: os.Stdout}
}

func (o *Output) Write(_ context.Context, c model.Classification) error {
	if _, err := fmt.Fprintln(o.w, output.FormatLine(c)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
