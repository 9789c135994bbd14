package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBlob persists the blob as a single file on disk. Writes go through a
// temp file and an atomic rename so a crash mid-write leaves the previous
// payload intact.
type FileBlob struct {
	path string
}

func NewFileBlob(path string) (*FileBlob, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &FileBlob{path: path}, nil
}

func (f *FileBlob) Get(_ context.Context) (string, bool, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read blob file: %w", err)
	}
	return string(b), true, nil
}

func (f *FileBlob) Set(_ context.Context, payload string) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp blob file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp blob file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp blob file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace blob file: %w", err)
	}
	return nil
}
