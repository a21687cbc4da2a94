// Package mirror maintains local replicas of remote document collections.
// Each mirror subscribes to one collection, replaces its snapshot atomically
// on every emission and writes through create/update/delete operations. No
// operation mutates the local snapshot directly: state changes only arrive
// through the subscription.
package mirror

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/metrics"
	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

// Codec adapts one entity type to the document field maps the store deals
// in. Decode must coerce defensively and never fail; Encode must produce a
// complete document.
type Codec[T any] struct {
	Singular string
	Plural   string
	Decode   func(store.Document) T
	Encode   func(T) map[string]any
	ID       func(T) int64
	Ref      func(T) model.Ref
	WithID   func(T, int64) T
}

// Mirror is the local replica of one remote collection.
type Mirror[T any] struct {
	coll  store.Collection
	codec Codec[T]
	log   *zap.Logger

	mu      sync.RWMutex
	records []T
	loading bool
	lastErr string
	cancel  func()
}

// New creates a mirror over coll. Call Start to begin syncing.
func New[T any](coll store.Collection, codec Codec[T], log *zap.Logger) *Mirror[T] {
	return &Mirror[T]{
		coll:    coll,
		codec:   codec,
		log:     log.With(zap.String("collection", coll.Name())),
		loading: true,
	}
}

// Start establishes the live subscription. The first snapshot is delivered
// before Start returns with both store drivers.
func (m *Mirror[T]) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	m.loading = true
	m.mu.Unlock()
	cancel := m.coll.Watch(m.applySnapshot, m.applyError)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
}

// Stop tears the subscription down. The mirror keeps its last snapshot.
func (m *Mirror[T]) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Mirror[T]) applySnapshot(docs []store.Document) {
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		records = append(records, m.codec.Decode(doc))
	}
	m.mu.Lock()
	m.records = records
	m.loading = false
	m.mu.Unlock()
}

func (m *Mirror[T]) applyError(err error) {
	m.log.Error("snapshot failed", zap.Error(err))
	metrics.RecordStoreError(m.coll.Name(), "watch")
	m.mu.Lock()
	m.lastErr = "Failed to load " + m.codec.Plural + ". Please try again later."
	m.loading = false
	m.mu.Unlock()
}

// Name returns the underlying collection name.
func (m *Mirror[T]) Name() string { return m.coll.Name() }

// Snapshot returns a copy of the current local replica.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.records))
	copy(out, m.records)
	return out
}

// Loading reports whether the first snapshot is still pending.
func (m *Mirror[T]) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the most recent operation error message, or "".
func (m *Mirror[T]) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Find returns the record with the given local id.
func (m *Mirror[T]) Find(id int64) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if m.codec.ID(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// maxID returns the highest local id in the replica, or 0 when empty.
func (m *Mirror[T]) maxID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for _, rec := range m.records {
		if id := m.codec.ID(rec); id > max {
			max = id
		}
	}
	return max
}

// handleFor resolves the remote handle cached for a local id.
func (m *Mirror[T]) handleFor(id int64) (string, bool) {
	rec, ok := m.Find(id)
	if !ok {
		return "", false
	}
	return m.codec.Ref(rec).Handle()
}

// fail records an operation failure: logged, counted, surfaced as a
// replaceable message. Mirrors never propagate store errors to callers.
func (m *Mirror[T]) fail(op, msg string, err error) bool {
	m.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	metrics.RecordStoreError(m.coll.Name(), op)
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
	return false
}

// Create assigns the next free human-facing id (max existing + 1, or 1 for
// an empty collection) and inserts the record. The local replica is not
// touched; the new record arrives via the subscription.
func (m *Mirror[T]) Create(ctx context.Context, rec T) bool {
	rec = m.codec.WithID(rec, m.maxID()+1)
	if _, err := m.coll.Insert(ctx, m.codec.Encode(rec)); err != nil {
		return m.fail("insert", "Failed to add "+m.codec.Singular+". Please try again.", err)
	}
	metrics.RecordStoreOp(m.coll.Name(), "insert")
	return true
}

// CreateMany assigns sequential ids after the current maximum and inserts
// every record in one atomic batch.
func (m *Mirror[T]) CreateMany(ctx context.Context, recs []T) bool {
	if len(recs) == 0 {
		return true
	}
	max := m.maxID()
	batch := m.coll.NewBatch()
	for i, rec := range recs {
		rec = m.codec.WithID(rec, max+int64(i)+1)
		batch.Insert(m.codec.Encode(rec))
	}
	if err := batch.Commit(ctx); err != nil {
		return m.fail("batch-insert", "Failed to add "+m.codec.Plural+". Please try again.", err)
	}
	metrics.RecordBatchWrite(m.coll.Name(), "insert", len(recs))
	return true
}

// Update issues a partial update for one record. Fails when the record has
// no resolved remote handle yet.
func (m *Mirror[T]) Update(ctx context.Context, id int64, fields map[string]any) bool {
	handle, ok := m.handleFor(id)
	if !ok {
		return m.fail("update", "Failed to update "+m.codec.Singular+". Please try again.",
			store.ErrNotFound)
	}
	if err := m.coll.Update(ctx, handle, fields); err != nil {
		return m.fail("update", "Failed to update "+m.codec.Singular+". Please try again.", err)
	}
	metrics.RecordStoreOp(m.coll.Name(), "update")
	return true
}

// Delete removes one record, failing the same way as Update when the handle
// has not resolved.
func (m *Mirror[T]) Delete(ctx context.Context, id int64) bool {
	handle, ok := m.handleFor(id)
	if !ok {
		return m.fail("delete", "Failed to delete "+m.codec.Singular+". Please try again.",
			store.ErrNotFound)
	}
	if err := m.coll.Delete(ctx, handle); err != nil {
		return m.fail("delete", "Failed to delete "+m.codec.Singular+". Please try again.", err)
	}
	metrics.RecordStoreOp(m.coll.Name(), "delete")
	return true
}

// DeleteMany removes every id that has a resolved handle as one batch.
// Unresolved ids are silently skipped.
func (m *Mirror[T]) DeleteMany(ctx context.Context, ids []int64) bool {
	batch := m.coll.NewBatch()
	n := 0
	for _, id := range ids {
		if handle, ok := m.handleFor(id); ok {
			batch.Delete(handle)
			n++
		}
	}
	if n == 0 {
		return true
	}
	if err := batch.Commit(ctx); err != nil {
		return m.fail("batch-delete",
			"Failed to delete selected "+m.codec.Plural+". Please try again.", err)
	}
	metrics.RecordBatchWrite(m.coll.Name(), "delete", n)
	return true
}

// SetFields applies the same partial update to every resolved id as one
// batch. Used for bulk status changes.
func (m *Mirror[T]) SetFields(ctx context.Context, ids []int64, fields map[string]any) bool {
	batch := m.coll.NewBatch()
	n := 0
	for _, id := range ids {
		if handle, ok := m.handleFor(id); ok {
			batch.Update(handle, fields)
			n++
		}
	}
	if n == 0 {
		return true
	}
	if err := batch.Commit(ctx); err != nil {
		return m.fail("batch-update",
			"Failed to update selected "+m.codec.Plural+". Please try again.", err)
	}
	metrics.RecordBatchWrite(m.coll.Name(), "update", n)
	return true
}

// SetFieldValues writes one field to a per-record value across the given
// ids as one batch. Used for balance, credit-score and tag batch edits.
func (m *Mirror[T]) SetFieldValues(ctx context.Context, field string, values map[int64]any) bool {
	batch := m.coll.NewBatch()
	n := 0
	for id, value := range values {
		if handle, ok := m.handleFor(id); ok {
			batch.Update(handle, map[string]any{field: value})
			n++
		}
	}
	if n == 0 {
		return true
	}
	if err := batch.Commit(ctx); err != nil {
		return m.fail("batch-update",
			"Failed to update selected "+m.codec.Plural+". Please try again.", err)
	}
	metrics.RecordBatchWrite(m.coll.Name(), "update", n)
	return true
}
