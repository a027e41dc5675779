// Package duckdb persists per-read metrics and base-call annotations in a
// queryable DuckDB database. The store is an output sink written once per
// run, not a cross-run cache.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for QC results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS read_metrics (
		sample_id VARCHAR,
		source_file VARCHAR,
		format VARCHAR,
		raw_length BIGINT,
		mean_q DOUBLE,
		median_q DOUBLE,
		pct_q20 DOUBLE,
		pct_q30 DOUBLE,
		gc_percent DOUBLE,
		n_count BIGINT,
		expected_errors DOUBLE,
		hq_longest_stretch_len BIGINT,
		trim_start BIGINT,
		trim_end BIGINT,
		trimmed_length BIGINT,
		passed_minlen BOOLEAN,
		PRIMARY KEY (sample_id)
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS base_calls (
		sample_id VARCHAR,
		position BIGINT,
		called_base VARCHAR,
		primary_base VARCHAR,
		secondary_base VARCHAR,
		primary_intensity DOUBLE,
		secondary_intensity DOUBLE,
		spr DOUBLE,
		snr DOUBLE,
		quality BIGINT,
		call_mode VARCHAR,
		allele_fraction DOUBLE,
		flags VARCHAR,
		PRIMARY KEY (sample_id, position)
	)`)
	return err
}

// ClearResults removes all stored metrics and base calls.
func (s *Store) ClearResults() error {
	if _, err := s.db.Exec("DELETE FROM read_metrics"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM base_calls")
	return err
}
