package taxonomy

import (
	"log/slog"

	"github.com/crane-bio/taxint/internal/model"
)

// DefaultRootID is the conventional root of the reference taxonomy.
const DefaultRootID model.TaxonID = 1

// defaultMaxDepth bounds lineage traversal; no real taxonomy approaches
// this, so hitting it means the parent graph is malformed.
const defaultMaxDepth = 256

// Resolver walks parent links in a taxonomy store to build lineages.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	store    ParentLookup
	root     model.TaxonID
	maxDepth int
	log      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRoot overrides the root taxon ID. Default: 1.
func WithRoot(id model.TaxonID) ResolverOption {
	return func(r *Resolver) { r.root = id }
}

// WithMaxDepth overrides the traversal depth bound. Default: 256.
func WithMaxDepth(n int) ResolverOption {
	return func(r *Resolver) { r.maxDepth = n }
}

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a Resolver over the given parent lookup.
func NewResolver(store ParentLookup, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store, root: DefaultRootID, maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// Resolve builds the lineage of id, leaf to root. It returns nil for the
// null identification. A missing parent entry truncates the lineage at the
// last resolvable taxon; a cycle or over-deep chain does the same with a
// warning. Neither condition is an error — a partial lineage still
// supports intersection.
func (r *Resolver) Resolve(id model.TaxonID) model.Lineage {
	if id <= 0 {
		return nil
	}

	lineage := make(model.Lineage, 0, 16)
	visited := make(map[model.TaxonID]struct{}, 16)
	cur := id
	for {
		if _, seen := visited[cur]; seen {
			r.log.Warn("taxonomy: cycle in parent graph", "taxid", int64(cur), "leaf", int64(id))
			return lineage
		}
		if len(lineage) >= r.maxDepth {
			r.log.Warn("taxonomy: lineage exceeds depth bound", "leaf", int64(id), "depth", r.maxDepth)
			return lineage
		}
		visited[cur] = struct{}{}
		lineage = append(lineage, cur)
		if cur == r.root {
			return lineage
		}
		parent, ok := r.store.Parent(cur)
		if !ok {
			r.log.Debug("taxonomy: no parent entry, truncating lineage", "taxid", int64(cur), "leaf", int64(id))
			return lineage
		}
		if parent == cur {
			// Self-parent below the designated root still terminates the walk.
			return lineage
		}
		cur = parent
	}
}
