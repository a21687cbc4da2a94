package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// documentRow is the relational shape of one stored document.
type documentRow struct {
	Handle     string         `gorm:"primaryKey;type:uuid"`
	Collection string         `gorm:"type:varchar(64);index;not null"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// PostgresStore persists documents in a single JSONB-backed table. Change
// notification is in-process: every committed write re-queries the affected
// collection and fans the snapshot out to watchers. A resync ticker covers
// writes made by other instances.
type PostgresStore struct {
	db     *gorm.DB
	hub    *hub
	log    *zap.Logger
	resync time.Duration
}

// NewPostgresStore wraps an open gorm handle. resync is the interval at
// which watchers are refreshed regardless of local writes; zero disables it.
func NewPostgresStore(db *gorm.DB, log *zap.Logger, resync time.Duration) *PostgresStore {
	return &PostgresStore{db: db, hub: newHub(), log: log, resync: resync}
}

// Migrate creates the documents table.
func (s *PostgresStore) Migrate() error {
	return s.db.AutoMigrate(&documentRow{})
}

// Collection returns the named collection.
func (s *PostgresStore) Collection(name string) Collection {
	return &pgCollection{store: s, name: name}
}

// load queries the full contents of one collection.
func (s *PostgresStore) load(name string) ([]Document, error) {
	var rows []documentRow
	if err := s.db.Where("collection = ?", name).Order("handle").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load collection %s: %w", name, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]any)
		if err := json.Unmarshal(row.Data, &fields); err != nil {
			s.log.Warn("skipping undecodable document",
				zap.String("collection", name),
				zap.String("handle", row.Handle),
				zap.Error(err))
			continue
		}
		docs = append(docs, Document{Handle: row.Handle, Fields: fields})
	}
	return docs, nil
}

// notify refreshes every watcher of name with the current contents.
func (s *PostgresStore) notify(name string) {
	if !s.hub.hasSubscribers(name) {
		return
	}
	docs, err := s.load(name)
	if err != nil {
		s.hub.broadcastError(name, err)
		return
	}
	s.hub.broadcast(name, docs)
}

type pgCollection struct {
	store *PostgresStore
	name  string
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Watch(onSnapshot func([]Document), onError func(error)) func() {
	remove := c.store.hub.add(c.name, &subscriber{onSnapshot: onSnapshot, onError: onError})

	if docs, err := c.store.load(c.name); err != nil {
		onError(err)
	} else {
		onSnapshot(docs)
	}

	stop := make(chan struct{})
	if c.store.resync > 0 {
		go func() {
			ticker := time.NewTicker(c.store.resync)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					c.store.notify(c.name)
				}
			}
		}()
	}

	return func() {
		close(stop)
		remove()
	}
}

func (c *pgCollection) Insert(ctx context.Context, fields map[string]any) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	row := documentRow{
		Handle:     uuid.NewString(),
		Collection: c.name,
		Data:       datatypes.JSON(payload),
	}
	if err := c.store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.name, err)
	}
	c.store.notify(c.name)
	return row.Handle, nil
}

func (c *pgCollection) Update(ctx context.Context, handle string, fields map[string]any) error {
	if err := updateDocument(c.store.db.WithContext(ctx), c.name, handle, fields); err != nil {
		return err
	}
	c.store.notify(c.name)
	return nil
}

func (c *pgCollection) Delete(ctx context.Context, handle string) error {
	if err := deleteDocument(c.store.db.WithContext(ctx), c.name, handle); err != nil {
		return err
	}
	c.store.notify(c.name)
	return nil
}

func (c *pgCollection) NewBatch() Batch {
	return &pgBatch{coll: c}
}

// updateDocument merges fields into an existing document's JSONB payload.
func updateDocument(db *gorm.DB, collection, handle string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode partial update: %w", err)
	}
	res := db.Model(&documentRow{}).
		Where("collection = ? AND handle = ?", collection, handle).
		Updates(map[string]any{"data": gorm.Expr("data || ?", datatypes.JSON(payload))})
	if res.Error != nil {
		return fmt.Errorf("update %s/%s: %w", collection, handle, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteDocument(db *gorm.DB, collection, handle string) error {
	res := db.Where("collection = ? AND handle = ?", collection, handle).Delete(&documentRow{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, handle, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type pgOp struct {
	kind   string
	handle string
	fields map[string]any
}

type pgBatch struct {
	coll *pgCollection
	ops  []pgOp
}

func (b *pgBatch) Insert(fields map[string]any) {
	b.ops = append(b.ops, pgOp{kind: "insert", fields: fields})
}

func (b *pgBatch) Update(handle string, fields map[string]any) {
	b.ops = append(b.ops, pgOp{kind: "update", handle: handle, fields: fields})
}

func (b *pgBatch) Delete(handle string) {
	b.ops = append(b.ops, pgOp{kind: "delete", handle: handle})
}

// Commit runs every accumulated write in one transaction.
func (b *pgBatch) Commit(ctx context.Context) error {
	err := b.coll.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range b.ops {
			switch op.kind {
			case "insert":
				payload, err := json.Marshal(op.fields)
				if err != nil {
					return fmt.Errorf("encode document: %w", err)
				}
				row := documentRow{
					Handle:     uuid.NewString(),
					Collection: b.coll.name,
					Data:       datatypes.JSON(payload),
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("insert into %s: %w", b.coll.name, err)
				}
			case "update":
				if err := updateDocument(tx, b.coll.name, op.handle, op.fields); err != nil {
					return err
				}
			case "delete":
				if err := deleteDocument(tx, b.coll.name, op.handle); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.coll.store.notify(b.coll.name)
	return nil
}
