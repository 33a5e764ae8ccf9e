// Package store persists tag names and their use counts in SQLite.
// It uses modernc.org/sqlite, a pure-Go driver, so no CGO is required.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/charmbracelet/log"

	_ "modernc.org/sqlite"
)

// Schema creates the tags table. Names are stored lowercased and compared
// without case.
const Schema = `
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	uses INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps the database connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("store: create directory for %q: %w", path, err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	log.Debug("Tag store ready", "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records one use of each name, creating tags as needed. Blank names
// are skipped. The stored tags are returned in input order.
func (s *Store) Add(ctx context.Context, names ...string) ([]index.Tag, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var added []index.Tag
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name, uses) VALUES (?, 1)
			 ON CONFLICT(name) DO UPDATE SET uses = uses + 1`, name)
		if err != nil {
			return nil, fmt.Errorf("store: add %q: %w", name, err)
		}

		var tag index.Tag
		row := tx.QueryRowContext(ctx, `SELECT id, name, uses FROM tags WHERE name = ?`, name)
		if err := row.Scan(&tag.ID, &tag.Name, &tag.Uses); err != nil {
			return nil, fmt.Errorf("store: read back %q: %w", name, err)
		}
		added = append(added, tag)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return added, nil
}

// Seed inserts tags from a tag list. Existing tags keep the larger of their
// stored and seeded use counts, so reseeding on every start is harmless.
func (s *Store) Seed(ctx context.Context, tags []index.Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tags (name, uses) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET uses = MAX(uses, excluded.uses)`)
	if err != nil {
		return fmt.Errorf("store: prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, name, t.Uses); err != nil {
			return fmt.Errorf("store: seed %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// All returns every stored tag ordered by name.
func (s *Store) All(ctx context.Context) ([]index.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, uses FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return scanTags(rows)
}

// Search returns up to limit tags starting with term, ordered by name.
// Unlike index.Index.Search it reads the database, so it also sees tags
// recorded by other processes sharing the file.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]index.Tag, error) {
	if term == "" {
		return []index.Tag{}, nil
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, uses FROM tags
		 WHERE substr(name, 1, length(?)) = ? COLLATE NOCASE
		 ORDER BY name LIMIT ?`, term, term, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search %q: %w", term, err)
	}
	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]index.Tag, error) {
	defer rows.Close()
	tags := []index.Tag{}
	for rows.Next() {
		var t index.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Uses); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
