package input

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/crane-bio/taxint/internal/model"
)

// Column layout of the tabular alignment format (BLAST outfmt-6 style with
// a trailing taxid column).
const (
	colQuery    = 0
	colIdentity = 2
	colAlnLen   = 3
	colEValue   = 10
	colTaxID    = 12
	minFields   = 13
)

// naMarker is the literal "not available" taxid emitted by the search tool.
const naMarker = "N/A"

// HitScanner streams alignment hits from tabular search output. Malformed
// lines are skipped with a warning; failures never abort the stream.
type HitScanner struct {
	sc   *bufio.Scanner
	hit  model.Hit
	line int
	log  *slog.Logger
}

// NewHitScanner wraps r in a hit scanner.
func NewHitScanner(r io.Reader) *HitScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &HitScanner{sc: sc, log: slog.Default()}
}

// Scan advances to the next parseable hit. It returns false at end of
// stream or on a read error (see Err).
func (h *HitScanner) Scan() bool {
	for h.sc.Scan() {
		h.line++
		line := h.sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hit, err := parseHit(line)
		if err != nil {
			h.log.Warn("input: skipping malformed hit line", "line", h.line, "err", err)
			continue
		}
		h.hit = hit
		return true
	}
	return false
}

// Hit returns the hit produced by the last successful Scan.
func (h *HitScanner) Hit() model.Hit { return h.hit }

// Err returns the first read error encountered, if any.
func (h *HitScanner) Err() error {
	if err := h.sc.Err(); err != nil {
		return fmt.Errorf("input: hit stream: %w", err)
	}
	return nil
}

func parseHit(line string) (model.Hit, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return model.Hit{}, fmt.Errorf("want >=%d fields, got %d", minFields, len(fields))
	}
	identity, err := strconv.ParseFloat(fields[colIdentity], 64)
	if err != nil {
		return model.Hit{}, fmt.Errorf("bad identity %q", fields[colIdentity])
	}
	alnLen, err := strconv.Atoi(fields[colAlnLen])
	if err != nil {
		return model.Hit{}, fmt.Errorf("bad alignment length %q", fields[colAlnLen])
	}
	evalue, err := strconv.ParseFloat(fields[colEValue], 64)
	if err != nil {
		return model.Hit{}, fmt.Errorf("bad e-value %q", fields[colEValue])
	}
	return model.Hit{
		ReadID:          fields[colQuery],
		TaxonID:         parseTaxID(fields[colTaxID]),
		PercentIdentity: identity,
		AlignmentLength: alnLen,
		EValue:          evalue,
	}, nil
}

// parseTaxID maps the taxid column to a TaxonID. "N/A", 0, and garbage all
// collapse to the null identification — the aggregator counts such hits but
// never records their taxa.
func parseTaxID(s string) model.TaxonID {
	if s == "" || s == naMarker {
		return model.NoTaxon
	}
	// Some tools emit semicolon-separated taxid lists; the first entry is
	// the subject's own taxon.
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return model.NoTaxon
	}
	return model.TaxonID(id)
}
