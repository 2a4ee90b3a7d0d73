package repository

import (
	"context"

	"paygate/internal/domain"
)

// TransactionRepository defines the persistence operations for processed
// transactions. Records are append-only: created exactly once per idempotency
// key and never mutated afterward.
type TransactionRepository interface {
	// Upsert persists the transaction keyed by its idempotency key. The write
	// is idempotent: repeating it for the same key leaves the original record
	// unchanged and returns no error.
	Upsert(ctx context.Context, txn *domain.ProcessedTransaction) error

	// GetByKey retrieves a transaction by its idempotency key.
	GetByKey(ctx context.Context, key string) (*domain.ProcessedTransaction, error)

	// FindCompleted retrieves the completed transaction matching all three
	// fields, if any. At most one record is returned.
	FindCompleted(ctx context.Context, payerContact string, amount float64, reference string) (*domain.ProcessedTransaction, error)
}
