package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crane-bio/taxint/internal/model"
)

// ReadManifest parses tab-separated (readID, length) records. Blank lines
// are skipped; a malformed line is fatal, since the manifest is reference
// data the whole run depends on.
func ReadManifest(r io.Reader) ([]model.ReadInfo, error) {
	var reads []model.ReadInfo
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("input: manifest line %d: want readID<TAB>length, got %q", lineNo, line)
		}
		length, err := strconv.Atoi(fields[1])
		if err != nil || length <= 0 {
			return nil, fmt.Errorf("input: manifest line %d: bad length %q", lineNo, fields[1])
		}
		reads = append(reads, model.ReadInfo{ID: fields[0], Length: length})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("input: manifest: %w", err)
	}
	return reads, nil
}

// LoadManifest opens path (plain or .gz) and parses it with ReadManifest.
func LoadManifest(path string) ([]model.ReadInfo, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadManifest(rc)
}
