package model

// Classification is taxint's output type — one record per read that
// survived filtering. Names are display names from the taxonomy store;
// "none found" stands in for any taxon that could not be named.
type Classification struct {
	ReadID string

	TopID   TaxonID
	TopName string

	// Identity and E-value of the read's top alignment hit, recorded before
	// any tie collapsing.
	EValue   float64
	Identity float64

	ContrastID   TaxonID
	ContrastName string

	BottomID   TaxonID
	BottomName string

	// RangeID is the intersection of the top and bottom hit lineages — the
	// phylogenetic range spanned by the read's surviving hits.
	RangeID   TaxonID
	RangeName string

	Hits         int // alignment hits examined for this read
	DistinctTaxa int // distinct taxa seen before tie collapsing

	// Diversity is (DistinctTaxa-1)/cap, a breadth-of-match heuristic.
	Diversity float64

	// ClassID is the intersection of the top and contrasting hit lineages —
	// the classification assigned to the read.
	ClassID   TaxonID
	ClassName string
}
