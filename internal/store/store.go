// Package store defines the document-store boundary the dashboard core is a
// client of: collection-oriented live snapshots, single-document writes and
// atomic multi-document batches. Two drivers are provided, a Postgres-backed
// one for deployments and an in-memory one for tests and development.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a write targets a document handle that does
// not exist in the collection.
var ErrNotFound = errors.New("document not found")

// Document is one record as held by the remote store: an opaque handle plus
// a loosely typed field map. Consumers coerce fields defensively.
type Document struct {
	Handle string
	Fields map[string]any
}

// Collection is a live view over one named document collection.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Watch establishes a standing snapshot subscription. onSnapshot is
	// invoked with the full collection contents immediately and again after
	// every observed change; onError is invoked if a snapshot cannot be
	// produced. The returned cancel function tears the channel down and must
	// be called to avoid leaking it.
	Watch(onSnapshot func([]Document), onError func(error)) (cancel func())

	// Insert stores a new document and returns its handle.
	Insert(ctx context.Context, fields map[string]any) (string, error)

	// Update merges fields into the document at handle. Returns ErrNotFound
	// if the handle does not resolve.
	Update(ctx context.Context, handle string, fields map[string]any) error

	// Delete removes the document at handle. Returns ErrNotFound if the
	// handle does not resolve.
	Delete(ctx context.Context, handle string) error

	// NewBatch starts an atomic multi-document write against this collection.
	NewBatch() Batch
}

// Batch accumulates writes that commit as a single all-or-nothing unit.
type Batch interface {
	Insert(fields map[string]any)
	Update(handle string, fields map[string]any)
	Delete(handle string)

	// Commit applies every accumulated write atomically. A failed commit
	// applies none of them.
	Commit(ctx context.Context) error
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
}
