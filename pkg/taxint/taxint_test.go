package taxint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crane-bio/taxint/internal/taxonomy"
)

const nodesDmp = `1	|	1	|	no rank	|
2	|	1	|	superkingdom	|
543	|	2	|	family	|
561	|	543	|	genus	|
562	|	561	|	species	|
620	|	543	|	genus	|
623	|	620	|	species	|
`

const namesDmp = `1	|	root	|		|	scientific name	|
2	|	Bacteria	|		|	scientific name	|
543	|	Enterobacteriaceae	|		|	scientific name	|
561	|	Escherichia	|		|	scientific name	|
562	|	Escherichia coli	|		|	scientific name	|
620	|	Shigella	|		|	scientific name	|
623	|	Shigella flexneri	|		|	scientific name	|
`

func testIndex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.dmp")
	names := filepath.Join(dir, "names.dmp")
	db := filepath.Join(dir, "taxonomy.db")
	if err := os.WriteFile(nodes, []byte(nodesDmp), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(names, []byte(namesDmp), 0644); err != nil {
		t.Fatal(err)
	}
	if err := taxonomy.BuildIndex(nodes, names, db); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return db
}

func hitLine(query, pident, length, evalue, taxid string) string {
	return strings.Join([]string{
		query, "subj", pident, length,
		"0", "0", "1", "100", "1", "100",
		evalue, "180", taxid,
	}, "\t")
}

func TestClassifyStream(t *testing.T) {
	c, err := New(testIndex(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	manifest := strings.NewReader("readA\t100\n")
	hits := strings.NewReader(strings.Join([]string{
		hitLine("readA", "99.2", "98", "1e-5", "562"),
		hitLine("readA", "97.0", "98", "1e-4", "623"),
	}, "\n") + "\n")

	var results []Result
	err = c.ClassifyStream(context.Background(), manifest, hits, func(r Result) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		t.Fatalf("ClassifyStream: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.TopID != 562 || r.TopName != "Escherichia coli" {
		t.Fatalf("top = %d %q", r.TopID, r.TopName)
	}
	if r.ClassID != 543 || r.ClassName != "Enterobacteriaceae" {
		t.Fatalf("classification = %d %q, want family LCA", r.ClassID, r.ClassName)
	}
	if r.Diversity != 0.01 {
		t.Fatalf("diversity = %g, want 0.01", r.Diversity)
	}
}

func TestClassifyStreamReusable(t *testing.T) {
	c, err := New(testIndex(t), WithCap(10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	for i := 0; i < 2; i++ {
		manifest := strings.NewReader("readA\t100\n")
		hits := strings.NewReader(hitLine("readA", "99.2", "98", "1e-5", "562") + "\n")
		count := 0
		err := c.ClassifyStream(context.Background(), manifest, hits, func(Result) error {
			count++
			return nil
		})
		if err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if count != 1 {
			t.Fatalf("pass %d: expected 1 result, got %d", i, count)
		}
	}
}

func TestLineageAndIntersect(t *testing.T) {
	c, err := New(testIndex(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	lin := c.Lineage(562)
	want := []int64{562, 561, 543, 2, 1}
	if len(lin) != len(want) {
		t.Fatalf("Lineage(562) = %v, want %v", lin, want)
	}
	for i := range want {
		if lin[i] != want[i] {
			t.Fatalf("Lineage(562) = %v, want %v", lin, want)
		}
	}

	if c.Lineage(0) != nil {
		t.Fatal("Lineage(0) must be nil")
	}
	if got := c.Intersect(562, 623); got != 543 {
		t.Fatalf("Intersect(562, 623) = %d, want 543", got)
	}
	if got := c.Name(99999); got != "none found" {
		t.Fatalf("Name(99999) = %q", got)
	}
}

func TestNewMissingIndex(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("expected error for missing index")
	}
}
