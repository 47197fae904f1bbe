package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryStore implements shared.KeyValueStore in process memory.
// Values are lost on restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string][]byte)}
}

// Get implements shared.KeyValueStore
func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, shared.ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

// Set implements shared.KeyValueStore
func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = slices.Clone(value)
	return nil
}

// Close implements shared.KeyValueStore
func (s *InMemoryStore) Close() error {
	return nil
}

// Len returns the number of stored keys
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
