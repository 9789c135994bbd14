package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"snapexpense/internal/core"
)

// memBlob is an in-memory BlobStore for tests.
type memBlob struct {
	payload string
	ok      bool
	getErr  error
	setErr  error
	sets    int
}

func (m *memBlob) Get(context.Context) (string, bool, error) {
	return m.payload, m.ok, m.getErr
}

func (m *memBlob) Set(_ context.Context, payload string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.payload = payload
	m.ok = true
	m.sets++
	return nil
}

func record(id, merchant string, pence int64, ts int64) core.Record {
	return core.Record{
		ID:        id,
		Amount:    core.Money{Pence: pence},
		Merchant:  merchant,
		Date:      "2024-01-05",
		Timestamp: ts,
	}
}

func TestAddPrependsNewestFirst(t *testing.T) {
	var records []core.Record
	for i, id := range []string{"a", "b", "c"} {
		r := record(id, "Costa", 100, int64(i))
		records = Add(r, records)

		if records[0].ID != id {
			t.Errorf("Add: records[0].ID = %q, want %q", records[0].ID, id)
		}
		if len(records) != i+1 {
			t.Errorf("Add: len = %d, want %d", len(records), i+1)
		}
	}
	// Oldest record ends up last.
	if records[2].ID != "a" {
		t.Errorf("oldest record should be last, got order %v", []string{records[0].ID, records[1].ID, records[2].ID})
	}
}

func TestAddThenDeleteRoundTripsToEmpty(t *testing.T) {
	r := record("r1", "Costa", 999, 1)
	records := Add(r, nil)
	records = DeleteByID(r.ID, records)
	if len(records) != 0 {
		t.Fatalf("add-then-delete should yield empty, got %d records", len(records))
	}
}

func TestDeleteByIDUnknownIsIdentity(t *testing.T) {
	records := Add(record("r1", "Costa", 999, 1), nil)
	out := DeleteByID("missing", records)
	if len(out) != len(records) || out[0].ID != "r1" {
		t.Errorf("delete of unknown id should be identity, got %v", out)
	}
}

func TestStorePersistThenLoad(t *testing.T) {
	ctx := context.Background()
	blob := &memBlob{}
	s := New(blob, nil)

	want := []core.Record{
		record("r2", "Pret", 450, 2),
		record("r1", "Costa", 999, 1),
	}
	if err := s.Persist(ctx, want); err != nil {
		t.Fatalf("Persist error: %v", err)
	}

	loaded := New(blob, nil).Load(ctx)
	if len(loaded) != len(want) {
		t.Fatalf("Load returned %d records, want %d", len(loaded), len(want))
	}
	for i := range want {
		if loaded[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, loaded[i], want[i])
		}
	}
}

func TestStoreLoadAbsentBlob(t *testing.T) {
	s := New(&memBlob{}, nil)
	if got := s.Load(context.Background()); len(got) != 0 {
		t.Errorf("Load of absent blob should be empty, got %d records", len(got))
	}
}

func TestStoreLoadMalformedBlob(t *testing.T) {
	blob := &memBlob{payload: "{not json", ok: true}
	s := New(blob, nil)
	// Must not panic or propagate the parse failure.
	if got := s.Load(context.Background()); len(got) != 0 {
		t.Errorf("Load of malformed blob should be empty, got %d records", len(got))
	}
}

func TestStoreLoadReadError(t *testing.T) {
	blob := &memBlob{getErr: errors.New("disk gone")}
	s := New(blob, nil)
	if got := s.Load(context.Background()); len(got) != 0 {
		t.Errorf("Load with read error should be empty, got %d records", len(got))
	}
}

func TestSaveRecordPersistsImmediately(t *testing.T) {
	ctx := context.Background()
	blob := &memBlob{}
	s := New(blob, nil)
	s.Load(ctx)

	if err := s.SaveRecord(ctx, record("r1", "Costa", 999, 1)); err != nil {
		t.Fatalf("SaveRecord error: %v", err)
	}
	if blob.sets != 1 {
		t.Errorf("SaveRecord should trigger exactly one persist, got %d", blob.sets)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}

	if err := s.RemoveRecord(ctx, "r1"); err != nil {
		t.Fatalf("RemoveRecord error: %v", err)
	}
	if blob.sets != 2 {
		t.Errorf("RemoveRecord should trigger a persist, got %d total", blob.sets)
	}
	if s.Count() != 0 {
		t.Errorf("Count after delete = %d, want 0", s.Count())
	}
}

func TestSaveRecordRejectsInvalid(t *testing.T) {
	blob := &memBlob{}
	s := New(blob, nil)

	bad := record("r1", "   ", 999, 1)
	if err := s.SaveRecord(context.Background(), bad); !errors.Is(err, core.ErrEmptyMerchant) {
		t.Fatalf("SaveRecord error = %v, want ErrEmptyMerchant", err)
	}
	if blob.sets != 0 {
		t.Errorf("invalid record must not be persisted, got %d writes", blob.sets)
	}
}

func TestRemoveRecordUnknownSkipsPersist(t *testing.T) {
	ctx := context.Background()
	blob := &memBlob{}
	s := New(blob, nil)
	if err := s.SaveRecord(ctx, record("r1", "Costa", 999, 1)); err != nil {
		t.Fatalf("SaveRecord error: %v", err)
	}

	if err := s.RemoveRecord(ctx, "missing"); err != nil {
		t.Fatalf("RemoveRecord error: %v", err)
	}
	if blob.sets != 1 {
		t.Errorf("no-op delete must not rewrite the blob, got %d writes", blob.sets)
	}
}

func TestSaveRecordPersistFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	blob := &memBlob{setErr: errors.New("disk full")}
	s := New(blob, nil)

	if err := s.SaveRecord(ctx, record("r1", "Costa", 999, 1)); err == nil {
		t.Fatal("SaveRecord should surface persist failure")
	}
	if s.Count() != 0 {
		t.Errorf("failed persist must not mutate the in-memory list, Count = %d", s.Count())
	}
}

func TestFileBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "records.json")

	blob, err := NewFileBlob(path)
	if err != nil {
		t.Fatalf("NewFileBlob error: %v", err)
	}

	if _, ok, err := blob.Get(ctx); err != nil || ok {
		t.Fatalf("Get before any Set: ok=%v err=%v, want absent", ok, err)
	}

	if err := blob.Set(ctx, `[{"id":"r1"}]`); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	payload, ok, err := blob.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if payload != `[{"id":"r1"}]` {
		t.Errorf("payload = %q", payload)
	}

	// Second Set replaces the whole payload.
	if err := blob.Set(ctx, `[]`); err != nil {
		t.Fatalf("second Set error: %v", err)
	}
	payload, _, _ = blob.Get(ctx)
	if payload != `[]` {
		t.Errorf("payload after replace = %q, want []", payload)
	}
}
