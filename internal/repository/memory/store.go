// Package memory provides a generic thread-safe in-memory key-value store
// used by repository adapters.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotFound is returned by Store when the requested key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by Insert when the key is already taken.
	ErrExists = errors.New("already exists")
)

// Store is a generic thread-safe in-memory key-value store. Values are copied
// on the way in and out, so callers never share them with the store.
type Store[V any] struct {
	mu      sync.RWMutex
	data    map[string]V
	keyFunc func(V) string
	copy    func(V) V
}

// New creates a Store with a key extractor and a copy function. A nil copy
// stores values as given.
func New[V any](keyFunc func(V) string, copy func(V) V) *Store[V] {
	if copy == nil {
		copy = func(v V) V { return v }
	}
	return &Store[V]{
		data:    make(map[string]V),
		keyFunc: keyFunc,
		copy:    copy,
	}
}

// Insert adds v, or returns ErrExists if its key is taken.
func (s *Store[V]) Insert(_ context.Context, v V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.keyFunc(v)
	if _, ok := s.data[key]; ok {
		return ErrExists
	}
	s.data[key] = s.copy(v)
	return nil
}

// Set inserts or replaces the value, using keyFunc to derive the key.
func (s *Store[V]) Set(_ context.Context, v V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.keyFunc(v)] = s.copy(v)
	return nil
}

// Replace overwrites an existing value, or returns ErrNotFound.
func (s *Store[V]) Replace(_ context.Context, v V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.keyFunc(v)
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	s.data[key] = s.copy(v)
	return nil
}

// Get returns the value for key, or ErrNotFound if absent.
func (s *Store[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return s.copy(v), nil
}

// Delete removes the value for key. Returns ErrNotFound if absent.
func (s *Store[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Sorted returns all stored values ordered by less.
func (s *Store[V]) Sorted(_ context.Context, less func(a, b V) bool) ([]V, error) {
	s.mu.RLock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, s.copy(v))
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}
