// Package memory provides a process-local KV store, used when no Redis is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/eldenfruit/storefront/pkg/database"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// KV implements repository.KV using a map.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty in-memory store.
func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored at key.
func (s *KV) Get(ctx context.Context, key string) (val []byte, err error) {
	_, end := database.TraceCommand(ctx, "memory", "GET", key)
	defer func() { end(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, apperrors.NotFound("key", key)
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value at key.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, end := database.TraceCommand(ctx, "memory", "SET", key)
	defer end(nil)

	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

// Delete removes key.
func (s *KV) Delete(ctx context.Context, key string) error {
	_, end := database.TraceCommand(ctx, "memory", "DEL", key)
	defer end(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Ping always succeeds.
func (s *KV) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored keys.
func (s *KV) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
