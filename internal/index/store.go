package index

import "context"

// Store persists one encrypted index blob per user. The blob is opaque to
// the store; only the manager holding the user secret can read it.
//
// Save implements optimistic concurrency: etag must be the value returned
// by the Load that started the read-modify-write cycle, or "" when
// creating the first blob for a user. A mismatch (someone else persisted
// in between) returns common.ErrConcurrentModification and the caller
// retries the whole cycle.
type Store interface {
	// Load returns the current blob and its etag, or
	// common.ErrIndexNotFound when the user has no index yet.
	Load(ctx context.Context, userID string) (*Blob, string, error)

	// Save overwrites the user's blob and returns the new etag.
	Save(ctx context.Context, userID string, blob *Blob, etag string) (string, error)

	// Delete removes the user's blob. Absent blobs are not an error.
	Delete(ctx context.Context, userID string) error
}
