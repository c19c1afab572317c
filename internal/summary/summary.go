// Package summary implements the basic-summary filter: a thin reporting
// step that re-parses intersects text and keeps records at or above a
// diversity-score threshold. It never touches the taxonomy store.
package summary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/crane-bio/taxint/internal/input"
)

// diversityLabel is the literal field label the filter matches. Fields are
// located by label, not by column position.
const diversityLabel = "diversity: "

// Run copies intersects lines with diversity >= minScore from in to out and
// appends a count trailer. Lines without a parseable diversity field are
// dropped. Returns the kept and total record counts.
func Run(in io.Reader, out io.Writer, minScore float64) (kept, total int, err error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	w := bufio.NewWriter(out)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		total++
		score, ok := diversityOf(line)
		if !ok || score < minScore {
			continue
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return kept, total, fmt.Errorf("summary: write: %w", err)
		}
		kept++
	}
	if err := sc.Err(); err != nil {
		return kept, total, fmt.Errorf("summary: read: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# kept %d of %d (min diversity %g)\n", kept, total, minScore); err != nil {
		return kept, total, fmt.Errorf("summary: write trailer: %w", err)
	}
	if err := w.Flush(); err != nil {
		return kept, total, fmt.Errorf("summary: flush: %w", err)
	}
	return kept, total, nil
}

// RunFiles runs the filter over files: inPath may be gzip-compressed,
// outPath is created or truncated.
func RunFiles(inPath, outPath string, minScore float64) (kept, total int, err error) {
	in, err := input.Open(inPath)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, 0, fmt.Errorf("summary: create %s: %w", outPath, err)
	}
	kept, total, err = Run(in, out, minScore)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("summary: close %s: %w", outPath, cerr)
	}
	return kept, total, err
}

// diversityOf extracts the diversity score from one intersects line.
func diversityOf(line string) (float64, bool) {
	for _, field := range strings.Split(line, "\t") {
		if !strings.HasPrefix(field, diversityLabel) {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimPrefix(field, diversityLabel), 64)
		if err != nil {
			return 0, false
		}
		return score, true
	}
	return 0, false
}
