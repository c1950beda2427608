// Package duckdb persists calls in a DuckDB database so that several runs
// can be queried together. Every row carries the id of the run that wrote it.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
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

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP,
		tumor VARCHAR,
		normal VARCHAR,
		genome VARCHAR,
		purity DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS rearrangements (
		run_id VARCHAR,
		locus VARCHAR,
		rearrangement VARCHAR,
		orientation VARCHAR,
		split_reads BIGINT,
		insert_reads BIGINT,
		j_start BIGINT,
		j_end BIGINT,
		v_start BIGINT,
		v_end BIGINT,
		d_seq VARCHAR,
		d_gene VARCHAR,
		vdj VARCHAR,
		homology DOUBLE,
		productivity VARCHAR,
		cdr3 VARCHAR,
		score DOUBLE,
		mapq VARCHAR,
		pass BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS translocations (
		run_id VARCHAR,
		annotation VARCHAR,
		mechanism VARCHAR,
		chrom_a VARCHAR,
		pos_a BIGINT,
		strand_a VARCHAR,
		chrom_b VARCHAR,
		pos_b BIGINT,
		strand_b VARCHAR,
		reads BIGINT,
		normal_reads BIGINT,
		score DOUBLE,
		pass BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS class_switch (
		run_id VARCHAR,
		isotype VARCHAR,
		orientation VARCHAR,
		score DOUBLE,
		mean_upstream DOUBLE,
		mean_downstream DOUBLE,
		p_value DOUBLE,
		reduction DOUBLE,
		pass BOOLEAN
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
