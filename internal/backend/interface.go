package backend

import (
	"context"

	"snapexpense/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the blob store and an optional cleanup function.
type Result struct {
	Blob    store.BlobStore
	Cleanup CleanupFunc
}

// Factory creates blob backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// File specific
	DataFilePath string
}

// Type represents the kind of blob backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	FileBackend   Type = "file"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, FileBackend:
		return true
	default:
		return false
	}
}
