package model

// Hit is one alignment record from the tabular search output, already
// attributed to a read. Hits for the same read arrive contiguously, best
// alignment first.
type Hit struct {
	ReadID          string
	TaxonID         TaxonID // NoTaxon when the search reported no identification
	PercentIdentity float64
	AlignmentLength int
	EValue          float64
	BitScore        float64
}

// ReadInfo is one manifest entry: a read and its sequence length.
type ReadInfo struct {
	ID     string
	Length int
}
