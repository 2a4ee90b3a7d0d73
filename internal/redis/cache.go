package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches completed-transaction lookups in Redis so that polling
// clients do not hit the durable store on every status request after the
// in-memory session has been reclaimed.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// StatusCacheTTL bounds how long a completed status is served from cache.
// Completed transactions never change, so the TTL only limits memory.
const StatusCacheTTL = 10 * time.Minute

const statusCachePrefix = "cache:status:"

// CachedStatus represents a cached completed-payment lookup.
type CachedStatus struct {
	PayerContact string  `json:"payer_contact"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
	Completed    bool    `json:"completed"`
}

// GetStatus retrieves a cached status by reference. Returns nil on cache miss.
func (s *CacheStore) GetStatus(ctx context.Context, reference string) (*CachedStatus, error) {
	key := statusCachePrefix + reference
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var status CachedStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetStatus stores a completed status in cache.
func (s *CacheStore) SetStatus(ctx context.Context, status *CachedStatus) error {
	key := statusCachePrefix + status.Reference
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, StatusCacheTTL).Err()
}
