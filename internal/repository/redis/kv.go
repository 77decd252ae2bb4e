package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eldenfruit/storefront/pkg/database"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// KV implements repository.KV on Redis. Every key is stored under
// namespace + ":" + key so several storefronts can share one instance.
type KV struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewKV creates a Redis-backed store. A zero ttl stores keys without expiry.
func NewKV(client *redis.Client, namespace string, ttl time.Duration) *KV {
	return &KV{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (s *KV) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Get retrieves the value at key.
func (s *KV) Get(ctx context.Context, key string) (val []byte, err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "GET", s.key(key))
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return data, nil
}

// Set stores value at key with the configured TTL.
func (s *KV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "SET", s.key(key))
	defer func() { end(err) }()

	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (s *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "DEL", s.key(key))
	defer func() { end(err) }()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Ping checks the connection.
func (s *KV) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
