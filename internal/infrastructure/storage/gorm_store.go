package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table
type KVEntry struct {
	Key       string    `gorm:"column:key;type:varchar(255);primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormStore implements shared.KeyValueStore on a SQL table through GORM.
// It works with any dialect that supports upserts (SQLite, PostgreSQL).
type GormStore struct {
	db     *gorm.DB
	closer func() error
}

// NewGormStore creates a store over db. The kv_entries table must exist;
// see AutoMigrate and the SQL migrations.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the kv_entries table when missing
func (s *GormStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}

// Get implements shared.KeyValueStore
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set implements shared.KeyValueStore
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Close implements shared.KeyValueStore. It closes the connection pool
// only when the store opened it.
func (s *GormStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
