package postgres

import (
	"context"
	"database/sql"
	"errors"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of
// repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Upsert persists the transaction. ON CONFLICT DO NOTHING makes the write
// idempotent by transaction_key: a redelivered confirmation never creates a
// duplicate row or alters the fields written by the first delivery.
func (r *TransactionRepository) Upsert(ctx context.Context, txn *domain.ProcessedTransaction) error {
	query := `
		INSERT INTO processed_transactions
			(transaction_key, source, processed_at, payer_contact, raw_sender, amount, identifier, reference, status)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_key) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.TransactionKey,
		txn.Source,
		txn.PayerContact,
		txn.RawSender,
		txn.Amount,
		txn.Identifier,
		txn.Reference,
		txn.Status,
	)

	return err
}

// GetByKey retrieves a transaction by its idempotency key.
func (r *TransactionRepository) GetByKey(ctx context.Context, key string) (*domain.ProcessedTransaction, error) {
	query := `
		SELECT transaction_key, source, processed_at, payer_contact, raw_sender, amount, identifier, reference, status
		FROM processed_transactions WHERE transaction_key = $1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, key))
}

// FindCompleted retrieves the completed transaction matching payer contact,
// amount and reference. At most one row is considered.
func (r *TransactionRepository) FindCompleted(ctx context.Context, payerContact string, amount float64, reference string) (*domain.ProcessedTransaction, error) {
	query := `
		SELECT transaction_key, source, processed_at, payer_contact, raw_sender, amount, identifier, reference, status
		FROM processed_transactions
		WHERE payer_contact = $1 AND amount = $2 AND reference = $3
		LIMIT 1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, payerContact, amount, reference))
}

func (r *TransactionRepository) scanOne(row *sql.Row) (*domain.ProcessedTransaction, error) {
	var txn domain.ProcessedTransaction
	err := row.Scan(
		&txn.TransactionKey,
		&txn.Source,
		&txn.ProcessedAt,
		&txn.PayerContact,
		&txn.RawSender,
		&txn.Amount,
		&txn.Identifier,
		&txn.Reference,
		&txn.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &txn, nil
}
