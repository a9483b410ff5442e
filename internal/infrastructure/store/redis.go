package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/credverse/credential-portal/internal/domain"
)

// Key layout: credport:<version>:identity:<slot>. The version segment
// exists so a schema change can bust stale records.
const (
	keyApp     = "credport"
	keyVersion = "v1"
)

// RedisStore persists the single identity slot in redis. Every write is a
// full-record overwrite; partial patches are not part of the port.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ domain.IdentityStore = (*RedisStore)(nil)

// NewRedisStore builds a store over one identity slot.
func NewRedisStore(client *redis.Client, slot string) *RedisStore {
	if slot == "" {
		slot = "default"
	}
	return &RedisStore{
		client: client,
		key:    fmt.Sprintf("%s:%s:identity:%s", keyApp, keyVersion, slot),
	}
}

// Get returns the stored identity or domain.ErrIdentityNotFound.
func (s *RedisStore) Get(ctx context.Context) (*domain.UserIdentity, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read identity slot: %w", err)
	}

	var identity domain.UserIdentity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("decode identity record: %w", err)
	}
	return &identity, nil
}

// Put overwrites the slot with the complete record.
func (s *RedisStore) Put(ctx context.Context, identity *domain.UserIdentity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity record: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write identity slot: %w", err)
	}
	return nil
}

// Clear removes the slot.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear identity slot: %w", err)
	}
	return nil
}

// HealthCheck pings the backing redis.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
