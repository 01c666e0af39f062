// Package store persists harvested records to a local SQLite database.
//
// The store is an optional sink next to the file exporters: reruns upsert
// by record ID, so the table always reflects the latest run for each
// sequence position.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"animeharvest/pkg/extract"
)

const schema = `
CREATE TABLE IF NOT EXISTS anime (
  id INTEGER PRIMARY KEY,
  title TEXT,
  score REAL,
  scored_by INTEGER,
  "rank" INTEGER,
  popularity INTEGER,
  members INTEGER,
  favorites INTEGER,
  genres TEXT NOT NULL
);
`

// DB wraps the SQLite connection for the harvest sink.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// SaveRecords upserts the given records by ID in one transaction.
func (d *DB) SaveRecords(ctx context.Context, records []extract.Record) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anime (id, title, score, scored_by, "rank", popularity, members, favorites, genres)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  score = excluded.score,
		  scored_by = excluded.scored_by,
		  "rank" = excluded."rank",
		  popularity = excluded.popularity,
		  members = excluded.members,
		  favorites = excluded.favorites,
		  genres = excluded.genres
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(
			ctx,
			rec.ID,
			rec.Title,
			rec.Score,
			rec.ScoredBy,
			rec.Rank,
			rec.Popularity,
			rec.Members,
			rec.Favorites,
			rec.Genres,
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM anime`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// GetRecord loads one stored record by ID.
func (d *DB) GetRecord(ctx context.Context, id int) (*extract.Record, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, title, score, scored_by, "rank", popularity, members, favorites, genres
		FROM anime WHERE id = ?
	`, id)

	var rec extract.Record
	if err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Score,
		&rec.ScoredBy,
		&rec.Rank,
		&rec.Popularity,
		&rec.Members,
		&rec.Favorites,
		&rec.Genres,
	); err != nil {
		return nil, fmt.Errorf("scan record %d: %w", id, err)
	}
	return &rec, nil
}
