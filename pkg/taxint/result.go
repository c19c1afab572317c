package taxint

import "github.com/crane-bio/taxint/internal/model"

// Result is one classified read.
// This is the stable public type — internal representations may evolve
// independently without breaking consumers.
type Result struct {
	ReadID string `json:"read_id"`

	TopID   int64  `json:"top_id"`
	TopName string `json:"top_name"`

	EValue   float64 `json:"e_value"`  // top hit's E-value
	Identity float64 `json:"identity"` // top hit's percent identity

	ContrastID   int64  `json:"contrast_id"`
	ContrastName string `json:"contrast_name"`

	BottomID   int64  `json:"bottom_id"`
	BottomName string `json:"bottom_name"`

	RangeID   int64  `json:"range_id"` // top∩bottom: phylogenetic range
	RangeName string `json:"range_name"`

	Hits         int `json:"hits"`
	DistinctTaxa int `json:"distinct_taxa"`

	Diversity float64 `json:"diversity"`

	ClassID   int64  `json:"class_id"` // top∩contrast: the classification
	ClassName string `json:"class_name"`
}

func toResult(c model.Classification) Result {
	return Result{
		ReadID:       c.ReadID,
		TopID:        int64(c.TopID),
		TopName:      c.TopName,
		EValue:       c.EValue,
		Identity:     c.Identity,
		ContrastID:   int64(c.ContrastID),
		ContrastName: c.ContrastName,
		BottomID:     int64(c.BottomID),
		BottomName:   c.BottomName,
		RangeID:      int64(c.RangeID),
		RangeName:    c.RangeName,
		Hits:         c.Hits,
		DistinctTaxa: c.DistinctTaxa,
		Diversity:    c.Diversity,
		ClassID:      int64(c.ClassID),
		ClassName:    c.ClassName,
	}
}
