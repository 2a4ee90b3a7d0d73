package domain

import (
	"fmt"
	"time"
)

// ConfirmationSource identifies the channel a confirmation arrived on.
type ConfirmationSource string

const (
	SourceSMS             ConfirmationSource = "sms"
	SourceAppNotification ConfirmationSource = "gpay"
)

// ConfirmationEvent is the transient parse result of an unstructured
// confirmation payload. It is never persisted as-is.
type ConfirmationEvent struct {
	Source     ConfirmationSource
	Amount     float64
	Identifier string
	RawSender  string
}

// TransactionStatus represents the status of a processed transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// ProcessedTransaction is the durable, append-only record of a reconciled
// confirmation. Its identity is the composite (source, identifier) key, which
// is independent of the in-memory session's amount key — this is what keeps
// deduplication correct after the session has been reclaimed.
type ProcessedTransaction struct {
	TransactionKey string
	Source         ConfirmationSource
	ProcessedAt    time.Time
	PayerContact   string
	RawSender      string
	Amount         float64
	Identifier     string
	Reference      string
	Status         TransactionStatus
}

// TransactionKey builds the composite idempotency key for a confirmation.
func TransactionKey(source ConfirmationSource, identifier string) string {
	return fmt.Sprintf("%s_%s", source, identifier)
}
