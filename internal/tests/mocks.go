package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"paygate/internal/domain"
	"paygate/internal/redis"
	"paygate/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.ProcessedTransaction

	// Counters for verification
	UpsertCallCount int32

	// Error injection
	UpsertError        error
	FindCompletedError error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.ProcessedTransaction),
	}
}

func (m *MockTransactionRepository) Upsert(ctx context.Context, txn *domain.ProcessedTransaction) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Idempotent by key: the first write wins, repeats are no-ops.
	if _, exists := m.transactions[txn.TransactionKey]; exists {
		return nil
	}
	copy := *txn
	copy.ProcessedAt = time.Now()
	m.transactions[txn.TransactionKey] = &copy
	return nil
}

func (m *MockTransactionRepository) GetByKey(ctx context.Context, key string) (*domain.ProcessedTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *txn
	return &copy, nil
}

func (m *MockTransactionRepository) FindCompleted(ctx context.Context, payerContact string, amount float64, reference string) (*domain.ProcessedTransaction, error) {
	if m.FindCompletedError != nil {
		return nil, m.FindCompletedError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.PayerContact == payerContact && txn.Amount == amount && txn.Reference == reference {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Count returns the number of stored records for test assertions.
func (m *MockTransactionRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// Get returns the stored record for test assertions.
func (m *MockTransactionRepository) Get(key string) *domain.ProcessedTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[key]
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier is a mock implementation of service.Notifier.
type MockNotifier struct {
	mu       sync.Mutex
	messages []string

	// Error injection
	SendError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, text string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

// Messages returns delivered messages for test assertions.
func (m *MockNotifier) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireAmountLock(ctx context.Context, amountKey string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[amountKey] {
		return false, nil
	}
	m.locks[amountKey] = true
	return true, nil
}

func (m *MockLockStore) ReleaseAmountLock(ctx context.Context, amountKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, amountKey)
	return nil
}

// Hold marks a lock as held by someone else for test setup.
func (m *MockLockStore) Hold(amountKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[amountKey] = true
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu       sync.Mutex
	statuses map[string]*redis.CachedStatus

	GetCallCount int32
	SetCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{statuses: make(map[string]*redis.CachedStatus)}
}

func (m *MockCacheStore) GetStatus(ctx context.Context, reference string) (*redis.CachedStatus, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[reference]
	if !ok {
		return nil, nil
	}
	copy := *status
	return &copy, nil
}

func (m *MockCacheStore) SetStatus(ctx context.Context, status *redis.CachedStatus) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *status
	m.statuses[status.Reference] = &copy
	return nil
}
