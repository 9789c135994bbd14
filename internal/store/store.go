// Package store owns the persisted record collection: load at startup,
// newest-first in-memory mutation, and a whole-blob rewrite after every
// add and delete.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"snapexpense/internal/core"
	applog "snapexpense/internal/log"
)

// Store holds the record collection and keeps the persisted blob in sync
// with it. There is exactly one mutator per process, but HTTP handlers may
// run concurrently, so the list is mutex-guarded.
type Store struct {
	mu      sync.Mutex
	blob    BlobStore
	records []core.Record
	logger  *applog.Logger
}

func New(blob BlobStore, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{blob: blob, logger: logger.WithComponent(applog.ComponentStore)}
}

// Add returns a new sequence with r prepended. Newest-first ordering is
// established here, not by a sort pass.
func Add(r core.Record, records []core.Record) []core.Record {
	out := make([]core.Record, 0, len(records)+1)
	out = append(out, r)
	return append(out, records...)
}

// DeleteByID returns a new sequence with the matching record removed. The
// result is identical to the input when id is absent.
func DeleteByID(id string, records []core.Record) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Load reads the persisted blob into memory. An absent blob yields an
// empty collection; a malformed blob is logged and also yields an empty
// collection. Persistence corruption must never crash startup.
func (s *Store) Load(ctx context.Context) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok, err := s.blob.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed reading persisted records, starting empty", applog.FieldError, err)
		s.records = nil
		return nil
	}
	if !ok {
		s.records = nil
		return nil
	}

	var records []core.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		s.logger.WarnContext(ctx, "Persisted records are malformed, starting empty",
			applog.FieldError, err, "payload_bytes", len(payload))
		s.records = nil
		return nil
	}

	s.records = records
	s.logger.InfoContext(ctx, "Loaded persisted records", applog.FieldRecordCount, len(records))
	return s.snapshotLocked()
}

// Persist serializes the full list and overwrites the persisted blob.
func (s *Store) Persist(ctx context.Context, records []core.Record) error {
	if records == nil {
		records = []core.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := s.blob.Set(ctx, string(payload)); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// SaveRecord validates r, prepends it to the collection and immediately
// rewrites the persisted blob.
func (s *Store) SaveRecord(ctx context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := Add(r, s.records)
	if err := s.Persist(ctx, next); err != nil {
		return err
	}
	s.records = next
	s.logger.InfoContext(ctx, "Record saved",
		applog.FieldRecordID, r.ID,
		applog.FieldMerchant, r.Merchant,
		applog.FieldAmountPence, r.Amount.Pence,
		applog.FieldRecordCount, len(next))
	return nil
}

// RemoveRecord deletes the record with the given id and rewrites the
// persisted blob. Removing an unknown id is a no-op and skips the write.
func (s *Store) RemoveRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := DeleteByID(id, s.records)
	if len(next) == len(s.records) {
		return nil
	}
	if err := s.Persist(ctx, next); err != nil {
		return err
	}
	s.records = next
	s.logger.InfoContext(ctx, "Record deleted",
		applog.FieldRecordID, id,
		applog.FieldRecordCount, len(next))
	return nil
}

// Records returns a copy of the current collection, newest first.
func (s *Store) Records() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count returns the number of records currently held.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) snapshotLocked() []core.Record {
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}
