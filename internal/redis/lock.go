package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. The session registry already
// serializes per-amount access within a process; this lock extends that to
// deployments running more than one instance.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireAmountLock attempts to acquire the reconciliation lock for the given
// amount key. Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireAmountLock(ctx context.Context, amountKey string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:amount:%s", amountKey)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseAmountLock releases the reconciliation lock for the given amount key.
func (s *LockStore) ReleaseAmountLock(ctx context.Context, amountKey string) error {
	key := fmt.Sprintf("lock:amount:%s", amountKey)

	return s.client.Del(ctx, key).Err()
}
