package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// EnsureSchema creates the submissions table if needed. Having the migration
// in code keeps the service self-contained so docker-compose can bootstrap
// everything.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	father_name TEXT NOT NULL,
	aadhar_phone_number TEXT NOT NULL,
	hometown_location TEXT NOT NULL,
	blood_group TEXT NOT NULL,
	email TEXT,
	message TEXT,
	aadhar_photo_url TEXT,
	aadhar_number TEXT,
	admin_uploaded_doc_url TEXT,
	admin_doc_text TEXT,
	admin_notes JSONB,
	submitted_at TIMESTAMPTZ NOT NULL,
	last_admin_edit_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at DESC);`
	_, err := pool.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
