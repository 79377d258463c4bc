package export

import (
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	site            TEXT NOT NULL,
	url             TEXT NOT NULL,
	round           INTEGER NOT NULL,
	started_ns      INTEGER NOT NULL,
	elapsed_ns      INTEGER NOT NULL,
	interval_cycles INTEGER NOT NULL,
	duration_cycles INTEGER NOT NULL,
	nodes           INTEGER NOT NULL,
	seed            INTEGER NOT NULL,
	overruns        INTEGER NOT NULL,
	llc_size        INTEGER NOT NULL,
	line_size       INTEGER NOT NULL,
	sample_count    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx    INTEGER NOT NULL,
	cycles INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE INDEX IF NOT EXISTS runs_site ON runs(site, round);
`

// SQLiteSink stores runs and their samples in one database. Each run is
// written in a single transaction.
//
// SQLite integers are signed 64-bit; seeds are stored bit-for-bit as int64
// and read back the same way.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("export: open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("export: create sqlite schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Export inserts the run row and every sample.
func (s *SQLiteSink) Export(r *Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("export: sqlite begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Site, r.URL, r.Round,
		r.Started.UnixNano(), int64(r.Elapsed),
		int64(r.IntervalCycles), int64(r.DurationCycles),
		r.Nodes, int64(r.Seed), r.Overruns,
		int64(r.Geometry.LLCSize), int64(r.Geometry.LineSize),
		len(r.Samples),
	)
	if err != nil {
		return fmt.Errorf("export: sqlite insert run %s: %w", r.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (run_id, idx, cycles) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: sqlite prepare: %w", err)
	}
	defer stmt.Close()
	for i, v := range r.Samples {
		if _, err := stmt.Exec(r.ID, i, int64(v)); err != nil {
			return fmt.Errorf("export: sqlite insert sample %d of %s: %w", i, r.ID, err)
		}
	}
	return tx.Commit()
}

// Samples returns the stored samples of run id in measurement order.
func (s *SQLiteSink) Samples(id string) ([]uint64, error) {
	rows, err := s.db.Query(`SELECT cycles FROM samples WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, uint64(v))
	}
	return out, rows.Err()
}

// RunCount returns the number of stored runs for site.
func (s *SQLiteSink) RunCount(site string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE site = ?`, site).Scan(&n)
	return n, err
}

// Seed returns the stored seed of run id.
func (s *SQLiteSink) Seed(id string) (uint64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT seed FROM runs WHERE id = ?`, id).Scan(&v)
	return uint64(v), err
}

// Close closes the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }
