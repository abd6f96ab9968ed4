package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/use-agent/webboost/store"
)

// ensure postgresBackend implements store.Backend
var _ store.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS audits (
	id TEXT PRIMARY KEY,
	subject TEXT NOT NULL,
	url TEXT NOT NULL,
	mobile_ad_density INTEGER NOT NULL,
	has_schema BOOLEAN NOT NULL,
	word_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audits_by_subject ON audits (subject, created_at DESC);
`

// New creates a new Postgres-backed store.Backend.
func New(ctx context.Context, dsn string) (store.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, r *store.Record) error {
	query := `
	INSERT INTO audits (
		id, subject, url, mobile_ad_density, has_schema, word_count, status, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := b.pool.Exec(ctx, query,
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
		return fmt.Errorf("postgres: save: %w", err)
	}
	return nil
}

func (b *postgresBackend) List(ctx context.Context, f store.Filter) ([]*store.Record, error) {
	query := `SELECT id, subject, url, mobile_ad_density, has_schema, word_count, status, created_at FROM audits WHERE 1=1`
	args := []any{}
	argID := 1

	if f.Subject != "" {
		query += fmt.Sprintf(` AND subject = $%d`, argID)
		args = append(args, f.Subject)
		argID++
	}

	query += ` ORDER BY created_at DESC`

	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argID)
		args = append(args, f.Limit)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
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
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
