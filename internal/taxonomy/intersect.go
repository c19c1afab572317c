package taxonomy

import "github.com/crane-bio/taxint/internal/model"

// IntersectLineages returns the lowest common ancestor of two lineages:
// the first element of a, scanning leaf to root, that occurs anywhere in b.
// Because lineages are paths to a shared root, the first match is the most
// specific common taxon. Returns NoTaxon when either lineage is undefined
// or they are disjoint.
func IntersectLineages(a, b model.Lineage) model.TaxonID {
	if a == nil || b == nil {
		return model.NoTaxon
	}
	for _, t := range a {
		if b.Contains(t) {
			return t
		}
	}
	return model.NoTaxon
}

// Intersect resolves both taxa and intersects their lineages.
func (r *Resolver) Intersect(a, b model.TaxonID) model.TaxonID {
	return IntersectLineages(r.Resolve(a), r.Resolve(b))
}

// IntersectAll left-folds pairwise intersection over ids, re-resolving the
// running reduction against each next candidate. The fold never drops below
// the true multi-way ancestor: every ancestor of a reduction appears in the
// lineages it was reduced from, so the final result is order-independent.
func (r *Resolver) IntersectAll(ids []model.TaxonID) model.TaxonID {
	if len(ids) == 0 {
		return model.NoTaxon
	}
	acc := ids[0]
	for _, id := range ids[1:] {
		acc = r.Intersect(acc, id)
	}
	return acc
}
