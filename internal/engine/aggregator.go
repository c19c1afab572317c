// Package engine implements the streaming query aggregator: a per-read
// state machine over a read-grouped alignment hit stream that reconciles
// each read's top hits against the reference taxonomy and emits one
// classification per qualifying read.
package engine

import (
	"log/slog"
	"sort"

	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/taxonomy"
)

// Config controls the aggregator.
type Config struct {
	// Cap is the maximum number of distinct taxa considered per read and
	// the denominator of the diversity score. Default: 100.
	Cap int
	// MinCoveragePercent is the coverage gate: a read whose top hit spans
	// less than this fraction of the read length (in percent) is skipped.
	// Default: 95.
	MinCoveragePercent float64
}

// DefaultConfig returns the standard aggregator settings.
func DefaultConfig() Config {
	return Config{Cap: 100, MinCoveragePercent: 95}
}

// EmitFunc receives each finalized classification.
type EmitFunc func(model.Classification) error

// readState holds everything the aggregator tracks for the read currently
// being consumed. It is discarded at finalize; nothing carries across reads.
type readState struct {
	id          string
	hits        int
	seen        map[model.TaxonID]struct{}
	buckets     map[float64][]model.TaxonID
	topEValue   float64
	topIdentity float64
}

// Aggregator consumes an ordered, read-grouped hit stream. All hits for a
// read must arrive contiguously, best alignment first; the aggregator
// relies on that contiguity to know when a read is closed. One logical
// worker per instance: Observe and Finish must not be called concurrently.
type Aggregator struct {
	res   *taxonomy.Resolver
	names taxonomy.NameLookup
	cfg   Config
	emit  EmitFunc
	log   *slog.Logger

	lengths map[string]int
	pending map[string]struct{}

	cur   *readState // nil while the current block is being skipped
	curID string
	open  bool
	done  bool

	classified int
	skipped    int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

// New creates an Aggregator over the manifest reads. Each finalized
// classification is passed to emit exactly once, in stream order.
func New(res *taxonomy.Resolver, names taxonomy.NameLookup, reads []model.ReadInfo, cfg Config, emit EmitFunc, opts ...Option) *Aggregator {
	if cfg.Cap <= 0 {
		cfg.Cap = 100
	}
	a := &Aggregator{
		res:     res,
		names:   names,
		cfg:     cfg,
		emit:    emit,
		lengths: make(map[string]int, len(reads)),
		pending: make(map[string]struct{}, len(reads)),
	}
	for _, r := range reads {
		a.lengths[r.ID] = r.Length
		a.pending[r.ID] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

// Observe consumes one hit. Read-boundary transitions finalize the
// previous read; hits for unknown or gated-out reads are consumed without
// building state. Failures are scoped to one read and never abort the run.
func (a *Aggregator) Observe(hit model.Hit) error {
	if a.done {
		return nil
	}
	if !a.open || hit.ReadID != a.curID {
		if a.open {
			if err := a.closeCurrent(); err != nil {
				return err
			}
			if a.done {
				return nil
			}
		}
		a.startRead(hit)
	}
	if a.cur == nil {
		return nil // block is being skipped; hit consumed
	}
	a.recordHit(hit)
	return nil
}

// Finish closes out the read left open when the stream ended. This is the
// explicit terminal transition: no sentinel record is needed.
func (a *Aggregator) Finish() error {
	if a.open {
		if err := a.closeCurrent(); err != nil {
			return err
		}
	}
	a.done = true
	return nil
}

// Done reports whether every manifest read has been closed out; the caller
// may stop feeding hits once it returns true.
func (a *Aggregator) Done() bool { return a.done }

// Stats returns the number of reads classified and the number skipped
// (coverage gate, unknown read, or no classifiable hits).
func (a *Aggregator) Stats() (classified, skipped int) {
	return a.classified, a.skipped
}

// startRead begins a new block. The first hit of a block is the read's top
// hit; its identity and E-value are recorded for output before the hit is
// processed like any other.
func (a *Aggregator) startRead(hit model.Hit) {
	a.curID = hit.ReadID
	a.open = true
	a.cur = nil

	length, known := a.lengths[hit.ReadID]
	if !known {
		a.log.Debug("engine: hit for unknown read", "read", hit.ReadID)
		a.skipped++
		return
	}
	if _, waiting := a.pending[hit.ReadID]; !waiting {
		a.log.Warn("engine: read reappeared after close", "read", hit.ReadID)
		return
	}
	coverage := float64(hit.AlignmentLength) / float64(length)
	if coverage < a.cfg.MinCoveragePercent/100 {
		a.log.Debug("engine: read failed coverage gate",
			"read", hit.ReadID, "coverage", coverage, "min", a.cfg.MinCoveragePercent/100)
		a.skipped++
		return
	}
	a.cur = &readState{
		id:          hit.ReadID,
		seen:        make(map[model.TaxonID]struct{}, 16),
		buckets:     make(map[float64][]model.TaxonID, 16),
		topEValue:   hit.EValue,
		topIdentity: hit.PercentIdentity,
	}
}

// recordHit applies the per-hit filtering rules to the active read.
func (a *Aggregator) recordHit(hit model.Hit) {
	s := a.cur
	s.hits++
	if hit.TaxonID == model.NoTaxon {
		return
	}
	if _, dup := s.seen[hit.TaxonID]; dup {
		return
	}
	if len(s.seen) >= a.cfg.Cap {
		return
	}
	s.seen[hit.TaxonID] = struct{}{}
	s.buckets[hit.EValue] = append(s.buckets[hit.EValue], hit.TaxonID)
}

// closeCurrent finalizes the open block and removes the read from the
// pending set. Once the pending set drains the aggregator is done and the
// remaining stream is ignored.
func (a *Aggregator) closeCurrent() error {
	a.open = false
	delete(a.pending, a.curID)
	var err error
	if a.cur != nil {
		err = a.finalize(a.cur)
		a.cur = nil
	}
	if len(a.pending) == 0 {
		a.done = true
	}
	return err
}

// finalize runs the close-out sequence for one read: collapse tied-score
// buckets to their lineage intersection, drop duplicate taxa keeping the
// best rank, order by E-value, and emit the classification.
func (a *Aggregator) finalize(s *readState) error {
	for ev, taxa := range s.buckets {
		if len(taxa) > 1 {
			s.buckets[ev] = []model.TaxonID{a.res.IntersectAll(taxa)}
		}
	}

	evs := make([]float64, 0, len(s.buckets))
	for ev := range s.buckets {
		evs = append(evs, ev)
	}
	sort.Float64s(evs)

	// A bucket intersection can coincide with another bucket's taxon; keep
	// only the best-ranked occurrence of each ID.
	type entry struct {
		ev float64
		id model.TaxonID
	}
	var list []entry
	kept := make(map[model.TaxonID]struct{}, len(evs))
	for _, ev := range evs {
		for _, id := range s.buckets[ev] {
			if _, dup := kept[id]; dup {
				continue
			}
			kept[id] = struct{}{}
			list = append(list, entry{ev: ev, id: id})
		}
	}

	if len(list) == 0 {
		a.log.Info("engine: no classifiable hits for read", "read", s.id, "hits", s.hits)
		a.skipped++
		return nil
	}

	top := list[0].id
	contrast := model.NoTaxon
	if len(list) > 1 {
		contrast = list[1].id
	}
	class := model.NoTaxon
	if len(list) > 1 && top != model.NoTaxon {
		class = a.res.Intersect(top, contrast)
	}

	var bottom, span model.TaxonID
	switch {
	case len(list) == 1:
		bottom, span = top, top
	case len(list) == 2:
		bottom, span = contrast, class
	default:
		bottom = list[len(list)-1].id
		span = a.res.Intersect(top, bottom)
	}

	c := model.Classification{
		ReadID:       s.id,
		TopID:        top,
		TopName:      a.names.Name(top),
		EValue:       s.topEValue,
		Identity:     s.topIdentity,
		ContrastID:   contrast,
		ContrastName: a.names.Name(contrast),
		BottomID:     bottom,
		BottomName:   a.names.Name(bottom),
		RangeID:      span,
		RangeName:    a.names.Name(span),
		Hits:         s.hits,
		DistinctTaxa: len(s.seen),
		Diversity:    float64(len(s.seen)-1) / float64(a.cfg.Cap),
		ClassID:      class,
		ClassName:    a.names.Name(class),
	}
	a.classified++
	return a.emit(c)
}
