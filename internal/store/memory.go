package store

import (
	"context"
	"sync"
)

// MemoryStore keeps collections in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.collections[collection]), nil
}

func (s *MemoryStore) WriteAll(ctx context.Context, collection string, records []Record, columns []string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkColumns(columns); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := project(records, columns)
	s.mu.Lock()
	s.collections[collection] = rows
	s.mu.Unlock()
	return nil
}
