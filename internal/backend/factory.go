package backend

import (
	"context"
	"fmt"

	applog "snapexpense/internal/log"
	"snapexpense/internal/storage"
	"snapexpense/internal/store"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case FileBackend:
		return f.createFileBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewBlobRepository(config.SQLiteDBPath, store.BlobKey, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite blob repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"blob_key", store.BlobKey)

	return &Result{Blob: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*Result, error) {
	blob, err := store.NewFileBlob(config.DataFilePath)
	if err != nil {
		return nil, fmt.Errorf("initialize file blob: %w", err)
	}

	f.logger.Info("Initialized file backend", "path", config.DataFilePath)

	return &Result{Blob: blob, Cleanup: func() error { return nil }}, nil
}
