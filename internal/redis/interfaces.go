package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireAmountLock(ctx context.Context, amountKey string, ttl time.Duration) (bool, error)
	ReleaseAmountLock(ctx context.Context, amountKey string) error
}

// CacheStoreInterface defines the interface for status caching.
type CacheStoreInterface interface {
	GetStatus(ctx context.Context, reference string) (*CachedStatus, error)
	SetStatus(ctx context.Context, status *CachedStatus) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
