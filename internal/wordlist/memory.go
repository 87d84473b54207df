package wordlist

import (
	"context"
	"sync"
)

// MemoryStore keeps lists in process memory. It is used by tests and by
// the API server when no persistent driver is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	phrases, err := DecodePhrases(raw)
	if err != nil {
		return nil, false, err
	}
	return phrases, true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, phrases []string) error {
	raw, err := EncodePhrases(phrases)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Raw returns the persisted JSON for key.
func (s *MemoryStore) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.values[key]
	return raw, ok
}
