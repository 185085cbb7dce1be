// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records saved documents in a SQL database so past
// downloads can be listed. It is write-and-report only; the crawler never
// reads it back to decide what to visit.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfdl/pkg/types"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// timeLayout is fixed-width so saved_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"

	defaultLimit = 50
)

// Store is a catalog of saved documents.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the catalog database described by cfg and creates the
// schema if it does not exist. For sqlite3 the DSN is a file path whose
// parent directory is created on demand.
func Open(cfg types.CatalogConfig) (*Store, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating catalog directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			run_id TEXT,
			name TEXT NOT NULL,
			source_url TEXT NOT NULL,
			final_url TEXT NOT NULL,
			referrer TEXT,
			path TEXT NOT NULL,
			bytes BIGINT NOT NULL,
			content_type TEXT,
			saved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_saved_at ON documents(saved_at)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_final_url ON documents(final_url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one saved document.
func (s *Store) Record(ctx context.Context, doc *types.Document) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO documents (run_id, name, source_url, final_url, referrer, path, bytes, content_type, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.RunID, doc.Name, doc.SourceURL, doc.FinalURL, doc.Referrer,
		doc.Path, doc.Bytes, doc.ContentType, doc.SavedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", doc.Name, err)
	}
	return nil
}

// Recent returns up to limit documents, newest first. A non-positive limit
// selects the default of 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Document, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT run_id, name, source_url, final_url, referrer, path, bytes, content_type, saved_at
		 FROM documents ORDER BY saved_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var (
			d                            types.Document
			runID, referrer, contentType sql.NullString
			savedAt                      string
		)
		if err := rows.Scan(&runID, &d.Name, &d.SourceURL, &d.FinalURL, &referrer,
			&d.Path, &d.Bytes, &contentType, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.RunID = runID.String
		d.Referrer = referrer.String
		d.ContentType = contentType.String
		if t, err := time.Parse(timeLayout, savedAt); err == nil {
			d.SavedAt = t
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
