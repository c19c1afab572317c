package taxonomy

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/crane-bio/taxint/internal/model"
)

// NoneFound is the display name substituted for any taxon that cannot be
// named. It appears verbatim in the intersects output.
const NoneFound = "none found"

// ParentLookup is the subset of the store the lineage resolver needs.
type ParentLookup interface {
	Parent(id model.TaxonID) (model.TaxonID, bool)
}

// NameLookup resolves taxon IDs to display names.
type NameLookup interface {
	Name(id model.TaxonID) string
}

// Store provides read-only parent and name lookups over a pre-built sqlite
// taxonomy index. It is never written during a run and is safe for
// concurrent readers; independent runs may share the same index file.
type Store struct {
	db     *sql.DB
	parent *sql.Stmt
	name   *sql.Stmt
}

// Open opens the taxonomy index at path. A missing index is fatal for the
// run: the classifier cannot proceed without its reference data.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("taxonomy: index %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA query_only=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("taxonomy: pragma: %w", err)
		}
	}

	parent, err := db.Prepare(`SELECT parent FROM nodes WHERE taxid = ?`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("taxonomy: prepare parent lookup: %w", err)
	}
	name, err := db.Prepare(`SELECT name FROM names WHERE taxid = ?`)
	if err != nil {
		_ = parent.Close()
		_ = db.Close()
		return nil, fmt.Errorf("taxonomy: prepare name lookup: %w", err)
	}
	return &Store{db: db, parent: parent, name: name}, nil
}

// Parent returns the parent taxon of id, or false when id is unknown.
// id <= 0 short-circuits without touching the database.
func (s *Store) Parent(id model.TaxonID) (model.TaxonID, bool) {
	if id <= 0 {
		return model.NoTaxon, false
	}
	var p model.TaxonID
	err := s.parent.QueryRow(int64(id)).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NoTaxon, false
	}
	if err != nil {
		// Treat transient storage errors like an absent entry: the caller
		// truncates the lineage rather than failing the read.
		return model.NoTaxon, false
	}
	return p, true
}

// Name returns the NFC-normalized display name of id, or NoneFound when id
// is unknown or the null identification.
func (s *Store) Name(id model.TaxonID) string {
	if id <= 0 {
		return NoneFound
	}
	var n string
	if err := s.name.QueryRow(int64(id)).Scan(&n); err != nil {
		return NoneFound
	}
	return norm.NFC.String(n)
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	var errs []error
	if err := s.parent.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.name.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
