package backend

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCreateBackendInvalidType(t *testing.T) {
	factory := NewFactory(nil)

	if _, err := factory.CreateBackend(context.Background(), Config{Type: "redis"}); err == nil {
		t.Error("CreateBackend() with unknown type should fail")
	}
}

func TestCreateFileBackend(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{
		Type:         FileBackend,
		DataFilePath: filepath.Join(t.TempDir(), "records.json"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	ctx := context.Background()
	if err := result.Blob.Set(ctx, "payload"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	payload, ok, err := result.Blob.Get(ctx)
	if err != nil || !ok || payload != "payload" {
		t.Errorf("Get() = %q, %v, %v", payload, ok, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	if _, ok, err := result.Blob.Get(context.Background()); err != nil || ok {
		t.Errorf("fresh backend Get() = %v, %v, want absent", ok, err)
	}
}

func TestTypeIsValid(t *testing.T) {
	cases := []struct {
		t    Type
		want bool
	}{
		{SQLiteBackend, true},
		{FileBackend, true},
		{"", false},
		{"redis", false},
	}
	for _, tc := range cases {
		if got := tc.t.IsValid(); got != tc.want {
			t.Errorf("Type(%q).IsValid() = %v, want %v", tc.t, got, tc.want)
		}
	}
}
