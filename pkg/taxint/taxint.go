package taxint

import (
	"context"
	"fmt"
	"io"

	"github.com/crane-bio/taxint/internal/engine"
	"github.com/crane-bio/taxint/internal/input"
	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/taxonomy"
)

// Classifier assigns reads to taxonomic groups by lineage intersection.
// Safe for concurrent use: the taxonomy handle is read-only and each
// ClassifyStream call builds its own per-read state.
type Classifier struct {
	store *taxonomy.Store
	res   *taxonomy.Resolver
	cfg   engine.Config
}

// New opens the taxonomy index at taxonomyPath and returns a reusable
// Classifier. The index is opened read-only and shared across calls —
// create once, reuse across streams.
func New(taxonomyPath string, opts ...Option) (*Classifier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	store, err := taxonomy.Open(taxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("taxint: %w", err)
	}
	res := taxonomy.NewResolver(store, taxonomy.WithRoot(model.TaxonID(o.rootID)))

	return &Classifier{
		store: store,
		res:   res,
		cfg:   engine.Config{Cap: o.cap, MinCoveragePercent: o.minCoverage},
	}, nil
}

// ClassifyStream consumes a read manifest and a read-grouped alignment hit
// stream, calling emit once per qualifying read, in stream order. Hits for
// each read must be contiguous, best alignment first.
func (c *Classifier) ClassifyStream(ctx context.Context, manifest, hits io.Reader, emit func(Result) error) error {
	reads, err := input.ReadManifest(manifest)
	if err != nil {
		return fmt.Errorf("taxint: %w", err)
	}

	agg := engine.New(c.res, c.store, reads, c.cfg, func(cl model.Classification) error {
		return emit(toResult(cl))
	})

	sc := input.NewHitScanner(hits)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := agg.Observe(sc.Hit()); err != nil {
			return fmt.Errorf("taxint: %w", err)
		}
		if agg.Done() {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("taxint: %w", err)
	}
	return agg.Finish()
}

// Lineage returns the ancestor path of a taxon, leaf to root. Nil when the
// taxon is the null identification.
func (c *Classifier) Lineage(id int64) []int64 {
	lin := c.res.Resolve(model.TaxonID(id))
	if lin == nil {
		return nil
	}
	out := make([]int64, len(lin))
	for i, t := range lin {
		out[i] = int64(t)
	}
	return out
}

// Intersect returns the lowest common ancestor of two taxa, or 0 when they
// share no resolvable ancestor.
func (c *Classifier) Intersect(a, b int64) int64 {
	return int64(c.res.Intersect(model.TaxonID(a), model.TaxonID(b)))
}

// Name returns the display name of a taxon, or "none found".
func (c *Classifier) Name(id int64) string {
	return c.store.Name(model.TaxonID(id))
}

// Close releases the taxonomy handle.
func (c *Classifier) Close() error {
	return c.store.Close()
}
