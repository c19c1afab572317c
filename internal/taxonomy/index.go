package taxonomy

import (
	"bufio"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/crane-bio/taxint/internal/input"
)

const indexSchema = `
	CREATE TABLE IF NOT EXISTS nodes (
		taxid  INTEGER PRIMARY KEY,
		parent INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS names (
		taxid INTEGER PRIMARY KEY,
		name  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT OR REPLACE INTO schema_version (version) VALUES (1);
`

// BuildIndex constructs the sqlite taxonomy index at dbPath from NCBI-style
// nodes.dmp and names.dmp dumps (scientific names only). The result is the
// read-only index Open expects.
func BuildIndex(nodesPath, namesPath, dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("taxonomy: create index %s: %w", dbPath, err)
	}
	defer db.Close()

	for _, pragma := range []string{
		"PRAGMA journal_mode=OFF",
		"PRAGMA synchronous=OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("taxonomy: pragma: %w", err)
		}
	}
	if _, err := db.Exec(indexSchema); err != nil {
		return fmt.Errorf("taxonomy: schema: %w", err)
	}

	if err := loadNodes(db, nodesPath); err != nil {
		return err
	}
	return loadNames(db, namesPath)
}

func loadNodes(db *sql.DB, path string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("taxonomy: begin: %w", err)
	}
	defer tx.Rollback()

	ins, err := tx.Prepare(`INSERT OR REPLACE INTO nodes (taxid, parent) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("taxonomy: prepare: %w", err)
	}
	defer ins.Close()

	err = eachDmpLine(path, func(fields []string) error {
		if len(fields) < 2 {
			return nil
		}
		taxid, err1 := strconv.ParseInt(fields[0], 10, 64)
		parent, err2 := strconv.ParseInt(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			return nil
		}
		_, err := ins.Exec(taxid, parent)
		return err
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func loadNames(db *sql.DB, path string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("taxonomy: begin: %w", err)
	}
	defer tx.Rollback()

	ins, err := tx.Prepare(`INSERT OR REPLACE INTO names (taxid, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("taxonomy: prepare: %w", err)
	}
	defer ins.Close()

	err = eachDmpLine(path, func(fields []string) error {
		if len(fields) < 4 || fields[3] != "scientific name" {
			return nil
		}
		taxid, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil
		}
		_, err = ins.Exec(taxid, fields[1])
		return err
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// eachDmpLine streams an NCBI .dmp file (fields separated by "\t|\t",
// records terminated by "\t|") through fn.
func eachDmpLine(path string, fn func(fields []string) error) error {
	rc, err := input.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\t|")
		if line == "" {
			continue
		}
		if err := fn(strings.Split(line, "\t|\t")); err != nil {
			return fmt.Errorf("taxonomy: load %s: %w", path, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	return nil
}
