package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the service needs if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS processed_transactions (
			transaction_key TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			payer_contact TEXT NOT NULL,
			raw_sender TEXT NOT NULL DEFAULT '',
			amount NUMERIC(12,2) NOT NULL,
			identifier TEXT NOT NULL,
			reference TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_transactions_status_lookup
			ON processed_transactions (payer_contact, amount, reference)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
