package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process store driver with the same snapshot and
// batch semantics as the Postgres driver. Used by tests and the "memory"
// store driver setting.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]map[string]any
	hub  *hub
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]map[string]any),
		hub:  newHub(),
	}
}

// Collection returns the named collection, creating it lazily.
func (s *MemoryStore) Collection(name string) Collection {
	return &memCollection{store: s, name: name}
}

func (s *MemoryStore) docs(name string) map[string]map[string]any {
	if s.data[name] == nil {
		s.data[name] = make(map[string]map[string]any)
	}
	return s.data[name]
}

// snapshot builds a stable-ordered copy of a collection's documents.
// Callers must not hold s.mu.
func (s *MemoryStore) snapshot(name string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(name)
}

func (s *MemoryStore) snapshotLocked(name string) []Document {
	docs := make([]Document, 0, len(s.data[name]))
	for handle, fields := range s.data[name] {
		docs = append(docs, Document{Handle: handle, Fields: cloneFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Handle < docs[j].Handle })
	return docs
}

func (s *MemoryStore) notify(name string) {
	s.hub.broadcast(name, s.snapshot(name))
}

type memCollection struct {
	store *MemoryStore
	name  string
}

func (c *memCollection) Name() string { return c.name }

func (c *memCollection) Watch(onSnapshot func([]Document), onError func(error)) func() {
	cancel := c.store.hub.add(c.name, &subscriber{onSnapshot: onSnapshot, onError: onError})
	onSnapshot(c.store.snapshot(c.name))
	return cancel
}

func (c *memCollection) Insert(_ context.Context, fields map[string]any) (string, error) {
	handle := uuid.NewString()
	c.store.mu.Lock()
	c.store.docs(c.name)[handle] = cloneFields(fields)
	c.store.mu.Unlock()
	c.store.notify(c.name)
	return handle, nil
}

func (c *memCollection) Update(_ context.Context, handle string, fields map[string]any) error {
	c.store.mu.Lock()
	doc, ok := c.store.docs(c.name)[handle]
	if !ok {
		c.store.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range cloneFields(fields) {
		doc[k] = v
	}
	c.store.mu.Unlock()
	c.store.notify(c.name)
	return nil
}

func (c *memCollection) Delete(_ context.Context, handle string) error {
	c.store.mu.Lock()
	if _, ok := c.store.docs(c.name)[handle]; !ok {
		c.store.mu.Unlock()
		return ErrNotFound
	}
	delete(c.store.docs(c.name), handle)
	c.store.mu.Unlock()
	c.store.notify(c.name)
	return nil
}

func (c *memCollection) NewBatch() Batch {
	return &memBatch{coll: c}
}

type memOp struct {
	kind   string
	handle string
	fields map[string]any
}

type memBatch struct {
	coll *memCollection
	ops  []memOp
}

func (b *memBatch) Insert(fields map[string]any) {
	b.ops = append(b.ops, memOp{kind: "insert", fields: cloneFields(fields)})
}

func (b *memBatch) Update(handle string, fields map[string]any) {
	b.ops = append(b.ops, memOp{kind: "update", handle: handle, fields: cloneFields(fields)})
}

func (b *memBatch) Delete(handle string) {
	b.ops = append(b.ops, memOp{kind: "delete", handle: handle})
}

// Commit validates every targeted handle before applying anything, so a
// failing batch leaves the collection untouched.
func (b *memBatch) Commit(_ context.Context) error {
	s := b.coll.store
	s.mu.Lock()
	docs := s.docs(b.coll.name)
	for _, op := range b.ops {
		if op.kind == "insert" {
			continue
		}
		if _, ok := docs[op.handle]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("batch %s %s: %w", op.kind, op.handle, ErrNotFound)
		}
	}
	for _, op := range b.ops {
		switch op.kind {
		case "insert":
			docs[uuid.NewString()] = op.fields
		case "update":
			for k, v := range op.fields {
				docs[op.handle][k] = v
			}
		case "delete":
			delete(docs, op.handle)
		}
	}
	s.mu.Unlock()
	s.notify(b.coll.name)
	return nil
}

// cloneFields deep-copies a field map far enough that callers cannot alias
// stored slices or nested maps.
func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		cp := make([]string, len(val))
		copy(cp, val)
		return cp
	case []any:
		cp := make([]any, len(val))
		for i, el := range val {
			cp[i] = cloneValue(el)
		}
		return cp
	case map[string]any:
		return cloneFields(val)
	}
	return v
}
