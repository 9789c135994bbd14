package store

import "context"

// BlobKey is the fixed name the record collection is persisted under.
const BlobKey = "snap_expense_data"

// BlobStore is the port for the local persistent key-value collaborator:
// synchronous get/set of a single string blob under a fixed name.
type BlobStore interface {
	// Get returns the stored payload. ok is false when nothing has been
	// persisted yet, which is not an error.
	Get(ctx context.Context) (payload string, ok bool, err error)

	// Set overwrites the stored payload unconditionally.
	Set(ctx context.Context, payload string) error
}
