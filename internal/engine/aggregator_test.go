package engine

import (
	"testing"

	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/taxonomy"
)

// parentMap is an in-memory taxonomy for tests:
//
//	1 ── 2 ── 10
//	│    ├── 11
//	│    └── 12
//	└── 3 ── 20
type parentMap map[model.TaxonID]model.TaxonID

func (m parentMap) Parent(id model.TaxonID) (model.TaxonID, bool) {
	p, ok := m[id]
	return p, ok
}

type nameMap map[model.TaxonID]string

func (m nameMap) Name(id model.TaxonID) string {
	if n, ok := m[id]; ok {
		return n
	}
	return taxonomy.NoneFound
}

func testParents() parentMap {
	return parentMap{
		2: 1, 3: 1,
		10: 2, 11: 2, 12: 2,
		20: 3,
	}
}

func testNames() nameMap {
	return nameMap{
		1: "root", 2: "left", 3: "right",
		10: "ten", 11: "eleven", 12: "twelve",
		20: "twenty",
	}
}

func hit(read string, taxid model.TaxonID, evalue float64, alnLen int) model.Hit {
	return model.Hit{
		ReadID:          read,
		TaxonID:         taxid,
		PercentIdentity: 99.0,
		AlignmentLength: alnLen,
		EValue:          evalue,
	}
}

// run feeds hits through a fresh aggregator and returns the emissions.
func run(t *testing.T, reads []model.ReadInfo, cfg Config, hits []model.Hit) []model.Classification {
	t.Helper()
	var got []model.Classification
	res := taxonomy.NewResolver(testParents())
	a := New(res, testNames(), reads, cfg, func(c model.Classification) error {
		got = append(got, c)
		return nil
	})
	for _, h := range hits {
		if err := a.Observe(h); err != nil {
			t.Fatalf("Observe: %v", err)
		}
	}
	if err := a.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return got
}

func TestEndToEndScenario(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readA", 11, 1e-4, 98),
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.ReadID != "readA" {
		t.Fatalf("ReadID = %q", c.ReadID)
	}
	if c.TopID != 10 || c.TopName != "ten" {
		t.Fatalf("top = %d %q, want 10 ten", c.TopID, c.TopName)
	}
	if c.ContrastID != 11 || c.ContrastName != "eleven" {
		t.Fatalf("contrast = %d %q, want 11 eleven", c.ContrastID, c.ContrastName)
	}
	// LCA of 10 and 11 is 2.
	if c.ClassID != 2 || c.ClassName != "left" {
		t.Fatalf("classification = %d %q, want 2 left", c.ClassID, c.ClassName)
	}
	if c.Diversity != 0.01 {
		t.Fatalf("diversity = %g, want 0.01", c.Diversity)
	}
	if c.Hits != 2 || c.DistinctTaxa != 2 {
		t.Fatalf("hits=%d distinct=%d, want 2/2", c.Hits, c.DistinctTaxa)
	}
	if c.EValue != 1e-5 || c.Identity != 99.0 {
		t.Fatalf("top hit stats = %g/%g", c.EValue, c.Identity)
	}
	// Exactly 2 entries: bottom = contrast, range = classification.
	if c.BottomID != 11 || c.RangeID != 2 {
		t.Fatalf("bottom=%d range=%d, want 11/2", c.BottomID, c.RangeID)
	}
}

func TestCoverageGateSkips(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 50),
		hit("readA", 11, 1e-4, 98),
	})
	if len(got) != 0 {
		t.Fatalf("expected no classifications for gated read, got %d", len(got))
	}
}

func TestCoverageGateBoundaryInclusive(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}

	// Exactly at the threshold: retained.
	got := run(t, reads, DefaultConfig(), []model.Hit{hit("readA", 10, 1e-5, 95)})
	if len(got) != 1 {
		t.Fatalf("coverage exactly at threshold: expected 1 classification, got %d", len(got))
	}

	// One unit below: excluded.
	got = run(t, reads, DefaultConfig(), []model.Hit{hit("readA", 10, 1e-5, 94)})
	if len(got) != 0 {
		t.Fatalf("coverage below threshold: expected 0 classifications, got %d", len(got))
	}
}

func TestDeduplicationFirstHitWins(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readA", 10, 1e-3, 98), // same taxon, worse rank: discarded
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.Hits != 2 {
		t.Fatalf("hits = %d, want 2 (duplicate still counted)", c.Hits)
	}
	if c.DistinctTaxa != 1 {
		t.Fatalf("distinct = %d, want 1", c.DistinctTaxa)
	}
	// Single entry: bottom = top, range = top.
	if c.TopID != 10 || c.BottomID != 10 || c.RangeID != 10 {
		t.Fatalf("top/bottom/range = %d/%d/%d, want 10/10/10", c.TopID, c.BottomID, c.RangeID)
	}
	if c.ContrastID != 0 || c.ContrastName != taxonomy.NoneFound {
		t.Fatalf("contrast = %d %q, want 0 %q", c.ContrastID, c.ContrastName, taxonomy.NoneFound)
	}
}

func TestDiversityScoreFormula(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-9, 98),
		hit("readA", 11, 1e-8, 98),
		hit("readA", 12, 1e-7, 98),
		hit("readA", 20, 1e-6, 98),
		hit("readA", 3, 1e-5, 98),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	if got[0].Diversity != 0.04 {
		t.Fatalf("diversity = %g, want 0.04 for 5 distinct taxa at cap 100", got[0].Diversity)
	}
}

func TestTiedEValueBucketCollapses(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readA", 11, 1e-5, 98), // same bucket: collapses to LCA 2
		hit("readA", 20, 1e-4, 98),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.TopID != 2 {
		t.Fatalf("top = %d, want collapsed bucket intersection 2", c.TopID)
	}
	if c.ContrastID != 20 {
		t.Fatalf("contrast = %d, want 20", c.ContrastID)
	}
	// Distinct count reflects raw breadth before collapsing.
	if c.DistinctTaxa != 3 {
		t.Fatalf("distinct = %d, want 3", c.DistinctTaxa)
	}
	// 2 ∩ 20 = root.
	if c.ClassID != 1 {
		t.Fatalf("classification = %d, want 1", c.ClassID)
	}
}

func TestCollapsedIDDuplicateKeepsBestRank(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	// Bucket 1e-6 {10,11} collapses to 2; taxon 2 also appears at 1e-4.
	// The collapsed occurrence (better rank) must win.
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-6, 98),
		hit("readA", 11, 1e-6, 98),
		hit("readA", 2, 1e-4, 98),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.TopID != 2 {
		t.Fatalf("top = %d, want 2", c.TopID)
	}
	// After deduplication only one entry remains.
	if c.ContrastID != 0 {
		t.Fatalf("contrast = %d, want 0 after duplicate collapse", c.ContrastID)
	}
}

func TestThreeEntriesBottomPopped(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-6, 98),
		hit("readA", 11, 1e-5, 98),
		hit("readA", 20, 1e-4, 98),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.TopID != 10 || c.ContrastID != 11 || c.BottomID != 20 {
		t.Fatalf("top/contrast/bottom = %d/%d/%d, want 10/11/20", c.TopID, c.ContrastID, c.BottomID)
	}
	// Range spans top to bottom: 10 ∩ 20 = root.
	if c.RangeID != 1 {
		t.Fatalf("range = %d, want 1", c.RangeID)
	}
	// Classification stays top ∩ contrast: 10 ∩ 11 = 2.
	if c.ClassID != 2 {
		t.Fatalf("classification = %d, want 2", c.ClassID)
	}
}

func TestNullIdentificationDiscardedButCounted(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readA", 0, 1e-4, 98),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.Hits != 2 {
		t.Fatalf("hits = %d, want 2", c.Hits)
	}
	if c.DistinctTaxa != 1 {
		t.Fatalf("distinct = %d, want 1 (marker never recorded)", c.DistinctTaxa)
	}
}

func TestAllHitsUnidentifiedEmitsNothing(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 0, 1e-5, 98),
		hit("readA", 0, 1e-4, 98),
	})
	if len(got) != 0 {
		t.Fatalf("expected no classification when every taxon is unidentified, got %d", len(got))
	}
}

func TestUnknownReadConsumedSilently(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("ghost", 10, 1e-9, 98),
		hit("ghost", 11, 1e-8, 98),
		hit("readA", 10, 1e-5, 98),
	})
	if len(got) != 1 || got[0].ReadID != "readA" {
		t.Fatalf("expected only readA classified, got %+v", got)
	}
}

func TestEarlyStopAfterAllReadsFinalized(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	var got []model.Classification
	res := taxonomy.NewResolver(testParents())
	a := New(res, testNames(), reads, DefaultConfig(), func(c model.Classification) error {
		got = append(got, c)
		return nil
	})

	for _, h := range []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("trailing", 11, 1e-4, 98),
	} {
		if err := a.Observe(h); err != nil {
			t.Fatal(err)
		}
	}
	if !a.Done() {
		t.Fatal("expected Done after the only manifest read closed")
	}
	if err := a.Finish(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
}

func TestCapLimitsTaxaConsidered(t *testing.T) {
	reads := []model.ReadInfo{{ID: "readA", Length: 100}}
	cfg := Config{Cap: 2, MinCoveragePercent: 95}
	got := run(t, reads, cfg, []model.Hit{
		hit("readA", 10, 1e-6, 98),
		hit("readA", 11, 1e-5, 98),
		hit("readA", 20, 1e-4, 98), // over cap: not recorded
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(got))
	}
	c := got[0]
	if c.DistinctTaxa != 2 {
		t.Fatalf("distinct = %d, want cap-limited 2", c.DistinctTaxa)
	}
	if c.Hits != 3 {
		t.Fatalf("hits = %d, want 3 (over-cap hit still counted)", c.Hits)
	}
	if c.Diversity != 0.5 {
		t.Fatalf("diversity = %g, want (2-1)/2 = 0.5", c.Diversity)
	}
}

func TestMultipleReads(t *testing.T) {
	reads := []model.ReadInfo{
		{ID: "readA", Length: 100},
		{ID: "readB", Length: 200},
	}
	got := run(t, reads, DefaultConfig(), []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readB", 20, 1e-9, 195),
		hit("readB", 3, 1e-8, 195),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(got))
	}
	if got[0].ReadID != "readA" || got[1].ReadID != "readB" {
		t.Fatalf("emission order: %s then %s", got[0].ReadID, got[1].ReadID)
	}
	// 20 ∩ 3 = 3.
	if got[1].ClassID != 3 {
		t.Fatalf("readB classification = %d, want 3", got[1].ClassID)
	}
}

func TestStats(t *testing.T) {
	reads := []model.ReadInfo{
		{ID: "readA", Length: 100},
		{ID: "readB", Length: 100},
	}
	var got []model.Classification
	res := taxonomy.NewResolver(testParents())
	a := New(res, testNames(), reads, DefaultConfig(), func(c model.Classification) error {
		got = append(got, c)
		return nil
	})
	for _, h := range []model.Hit{
		hit("readA", 10, 1e-5, 98),
		hit("readB", 11, 1e-5, 10), // gated
	} {
		if err := a.Observe(h); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Finish(); err != nil {
		t.Fatal(err)
	}
	classified, skipped := a.Stats()
	if classified != 1 || skipped != 1 {
		t.Fatalf("Stats = (%d, %d), want (1, 1)", classified, skipped)
	}
}
