package domain

import "time"

// SessionStatus represents the current status of a payment session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// PaymentSession tracks one payment intent from creation to completion or expiry.
// At most one session exists per amount at any instant; the amount is the
// registry key.
type PaymentSession struct {
	Amount               float64
	PayerContact         string
	Reference            string
	Status               SessionStatus
	VerificationAttempts int
	CreatedAt            time.Time
	ExpiresAt            time.Time
	CompletedAt          time.Time
}

// Expired reports whether the session is past its deadline at the given instant.
func (s *PaymentSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// RemainingSeconds returns the whole seconds left until expiry, rounded up.
// Returns 0 for an expired session.
func (s *PaymentSession) RemainingSeconds(now time.Time) int {
	if s.Expired(now) {
		return 0
	}
	remaining := s.ExpiresAt.Sub(now)
	return int((remaining + time.Second - 1) / time.Second)
}
