package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *BlobRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewBlobRepository(dbPath, "snap_expense_data", nil)
	if err != nil {
		t.Fatalf("NewBlobRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGetAbsentBlob(t *testing.T) {
	repo := newTestRepository(t)

	payload, ok, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for an absent blob")
	}
	if payload != "" {
		t.Errorf("Get() payload = %q, want empty", payload)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	want := `[{"id":"r1","amount":9.99,"merchant":"Tesco","date":"2026-08-30","timestamp":1}]`
	if err := repo.Set(ctx, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	payload, ok, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if payload != want {
		t.Errorf("Get() payload = %q, want %q", payload, want)
	}
}

func TestSetOverwritesExistingBlob(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(ctx, "second"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	payload, ok, err := repo.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v after overwrite", ok, err)
	}
	if payload != "second" {
		t.Errorf("Get() payload = %q, want %q", payload, "second")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewBlobRepository(dbPath, "snap_expense_data", nil)
	if err != nil {
		t.Fatalf("NewBlobRepository() error = %v", err)
	}
	if err := repo.Set(context.Background(), "kept"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening runs migrations again over the same file.
	repo, err = NewBlobRepository(dbPath, "snap_expense_data", nil)
	if err != nil {
		t.Fatalf("NewBlobRepository() reopen error = %v", err)
	}
	defer repo.Close()

	payload, ok, err := repo.Get(context.Background())
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v after reopen", ok, err)
	}
	if payload != "kept" {
		t.Errorf("Get() payload = %q, want %q", payload, "kept")
	}
}
