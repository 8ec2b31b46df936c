package gamestate

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store, used for tests and the memory driver.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]any
	updates []UpdateMeta
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]any)}
}

func (s *MemoryStore) Get(_ context.Context, path string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[path]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = value
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, path string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := ToInt64(s.data[path])
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", path, err)
	}
	current += delta
	s.data[path] = current
	return current, nil
}

func (s *MemoryStore) Update(_ context.Context, patch map[string]any, meta UpdateMeta) error {
	if len(patch) == 0 {
		return fmt.Errorf("%s", ErrMsgEmptyPatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range patch {
		s.data[k] = v
	}
	s.updates = append(s.updates, meta)
	return nil
}

// Snapshot returns a shallow copy of every stored path.
func (s *MemoryStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Updates returns the metadata of every Update call, in order.
func (s *MemoryStore) Updates() []UpdateMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]UpdateMeta(nil), s.updates...)
}
