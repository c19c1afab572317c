package output

import (
	"context"
	"fmt"
	"strconv"

	"github.com/crane-bio/taxint/internal/model"
)

// Output defines the interface for classification record destinations.
type Output interface {
	Write(ctx context.Context, c model.Classification) error
	Close() error
}

// FormatLine renders a classification as one intersects line: labeled
// key:value fields, tab-separated, in fixed order. The downstream summary
// filter locates fields by their literal labels, so labels and order are a
// stable contract.
func FormatLine(c model.Classification) string {
	return fmt.Sprintf("query: %s\ttop hit: %s (%d)\te-value: %s\tidentity: %s\t"+
		"contrast: %s (%d)\tbottom: %s (%d)\trange: %s (%d)\t"+
		"hits: %d\ttaxa: %d\tdiversity: %s\tclassification: %s (%d)",
		c.ReadID,
		c.TopName, c.TopID,
		FormatFloat(c.EValue), FormatFloat(c.Identity),
		c.ContrastName, c.ContrastID,
		c.BottomName, c.BottomID,
		c.RangeName, c.RangeID,
		c.Hits, c.DistinctTaxa,
		FormatFloat(c.Diversity),
		c.ClassName, c.ClassID,
	)
}

// FormatFloat renders a float the way the intersects format expects:
// shortest representation that round-trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
