package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kora/internal/models"
)

// CacheService wraps Redis for the two cache concerns this service has:
// read-through account caching and the webhook idempotency fast path.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds a namespaced cache key.
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Account caching

func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("cannot cache nil account")
	}
	return s.Set(ctx, s.GenerateKey("account", "id", account.ID), account)
}

func (s *CacheService) GetAccount(ctx context.Context, accountID uint) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, s.GenerateKey("account", "id", accountID), &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("account not found in cache")
	}
	return &account, nil
}

// InvalidateAccount drops the cached copy after a committed balance change.
func (s *CacheService) InvalidateAccount(ctx context.Context, accountID uint) error {
	return s.Delete(ctx, s.GenerateKey("account", "id", accountID))
}

// ClaimEventReference marks a gateway event reference as in-flight using
// SETNX. It returns false when another delivery already holds the marker.
// This is a best-effort shield against retry bursts; the ledger's unique
// index on external_reference remains the authoritative guard.
func (s *CacheService) ClaimEventReference(ctx context.Context, externalRef string, ttl time.Duration) (bool, error) {
	key := s.GenerateKey("webhook", "ref", externalRef)
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

// ReleaseEventReference drops an in-flight marker so a later redelivery can
// reach the authoritative check after a failed credit.
func (s *CacheService) ReleaseEventReference(ctx context.Context, externalRef string) error {
	return s.Delete(ctx, s.GenerateKey("webhook", "ref", externalRef))
}

// FlushAll flushes all keys from the cache.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
