package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// Backend is the string key/value medium the Store persists JSON blobs to.
// A missing key is reported as ok == false with a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryBackend keeps entries in a map. Useful for tests and for
// STORE_BACKEND=memory.
type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: map[string]string{}}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

// SQLiteBackend stores entries as rows of the kv_entries table.
type SQLiteBackend struct {
	db *gorm.DB
}

// NewSQLiteBackend wraps an opened (and migrated) database.
func NewSQLiteBackend(db *gorm.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var e domain.KVEntry
	err := b.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	e := &domain.KVEntry{Key: key, Value: value}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(e).Error
}

func (b *SQLiteBackend) Remove(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where("key = ?", key).Delete(&domain.KVEntry{}).Error
}

// badgerEntry is the value type stored under each badgerhold key.
type badgerEntry struct {
	Value string
}

// BadgerBackend stores entries in an embedded Badger database through
// badgerhold.
type BadgerBackend struct {
	store *badgerhold.Store
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string) (*BadgerBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badger dir: %w", err)
	}
	options := badgerhold.DefaultOptions
	options.Options = badger.DefaultOptions(dir).WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{store: store}, nil
}

// Close releases the underlying database.
func (b *BadgerBackend) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func (b *BadgerBackend) Get(_ context.Context, key string) (string, bool, error) {
	var e badgerEntry
	err := b.store.Get(key, &e)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (b *BadgerBackend) Set(_ context.Context, key, value string) error {
	return b.store.Upsert(key, &badgerEntry{Value: value})
}

func (b *BadgerBackend) Remove(_ context.Context, key string) error {
	err := b.store.Delete(key, &badgerEntry{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}
