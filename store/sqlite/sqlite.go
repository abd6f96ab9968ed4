package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/use-agent/webboost/store"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements store.Backend
var _ store.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS audits (
	id TEXT PRIMARY KEY,
	subject TEXT NOT NULL,
	url TEXT NOT NULL,
	mobile_ad_density INTEGER NOT NULL,
	has_schema BOOLEAN NOT NULL,
	word_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS audits_by_subject ON audits (subject, created_at DESC)`,
}

// New opens (creating if needed) an SQLite database at dsn. Plain file
// paths get their parent directory created and WAL mode enabled.
func New(dsn string) (store.Backend, error) {
	isFile := !strings.HasPrefix(dsn, "file:") && dsn != ":memory:"
	if isFile {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pragmas := []string{"PRAGMA busy_timeout = 10000"}
	if isFile {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: schema: %w", err)
		}
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, r *store.Record) error {
	query := `
	INSERT INTO audits (
		id, subject, url, mobile_ad_density, has_schema, word_count, status, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		r.ID,
		r.Subject,
		r.URL,
		r.MobileAdDensity,
		r.HasSchema,
		r.WordCount,
		r.Status,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save: %w", err)
	}
	return nil
}

func (b *sqliteBackend) List(ctx context.Context, f store.Filter) ([]*store.Record, error) {
	query := `SELECT id, subject, url, mobile_ad_density, has_schema, word_count, status, created_at FROM audits WHERE 1=1`
	args := []any{}

	if f.Subject != "" {
		query += ` AND subject = ?`
		args = append(args, f.Subject)
	}

	query += ` ORDER BY created_at DESC, rowid DESC`

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var records []*store.Record
	for rows.Next() {
		var r store.Record
		err := rows.Scan(
			&r.ID, &r.Subject, &r.URL, &r.MobileAdDensity, &r.HasSchema,
			&r.WordCount, &r.Status, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return records, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
