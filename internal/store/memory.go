package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory SessionStore for tests. It mirrors the
// Redis semantics (including SetNX and the scored index) without any
// external dependency.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	lists  map[string][]string
	scores map[string]map[string]float64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		lists:  make(map[string][]string),
		scores: make(map[string]map[string]float64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) SetNX(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
		delete(s.lists, key)
		delete(s.scores, key)
	}
	return nil
}

func (s *MemoryStore) Append(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], value)
	return nil
}

func (s *MemoryStore) List(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := s.lists[key]
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

func (s *MemoryStore) IndexAdd(_ context.Context, key, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.scores[key]
	if !ok {
		idx = make(map[string]float64)
		s.scores[key] = idx
	}
	idx[member] = score
	return nil
}

func (s *MemoryStore) IndexExpired(_ context.Context, key string, max float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []string
	for member, score := range s.scores[key] {
		if score <= max {
			members = append(members, member)
		}
	}
	sort.Strings(members)
	return members, nil
}

func (s *MemoryStore) IndexRemove(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scores[key], member)
	return nil
}
