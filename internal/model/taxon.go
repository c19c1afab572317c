package model

// TaxonID identifies a node in the reference taxonomy. Zero means
// "no identification" and must never be looked up or stored as a seen taxon.
type TaxonID int64

// NoTaxon is the null identification.
const NoTaxon TaxonID = 0

// Lineage is an ordered ancestor path, most specific taxon first, ending at
// the tree root (or at the point where a parent lookup failed). A nil
// Lineage means the taxon could not be resolved at all.
type Lineage []TaxonID

// Contains reports whether id occurs anywhere in the lineage.
func (l Lineage) Contains(id TaxonID) bool {
	for _, t := range l {
		if t == id {
			return true
		}
	}
	return false
}
