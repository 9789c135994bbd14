// Package storage persists the record blob in a local SQLite database.
// The schema is deliberately a single key-value table: the application
// state is one JSON payload under a fixed name, rewritten whole on every
// mutation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	applog "snapexpense/internal/log"

	_ "modernc.org/sqlite"
)

type BlobRepository struct {
	db     *sql.DB
	name   string
	logger *applog.Logger
}

func NewBlobRepository(dbPath, name string, logger *applog.Logger) (*BlobRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	return &BlobRepository{
		db:     db,
		name:   name,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *BlobRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements store.BlobStore. A missing row is the empty state, not an
// error.
func (r *BlobRepository) Get(ctx context.Context) (string, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM blobs WHERE name = ?`, r.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read blob %q: %w", r.name, err)
	}
	return payload, true, nil
}

// Set implements store.BlobStore with an upsert of the whole payload.
func (r *BlobRepository) Set(ctx context.Context, payload string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blobs (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		r.name, payload)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", r.name, err)
	}

	r.logger.DebugContext(ctx, "Blob persisted", "name", r.name, "payload_bytes", len(payload))
	return nil
}
