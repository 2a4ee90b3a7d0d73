package service

import "errors"

var (
	// ErrInvalidContact is returned when the payer contact is missing or has no
	// domain separator.
	ErrInvalidContact = errors.New("invalid payer contact")

	// ErrInvalidAmount is returned when the amount is not a finite positive value.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnauthorized is returned when a webhook presents a bad shared secret.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingPayload is returned when a webhook carries neither an SMS text
	// nor a notification text.
	ErrMissingPayload = errors.New("no valid payment data received")

	// ErrTooManyAttempts is returned once a session's verification attempt
	// ceiling is exceeded.
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// ErrConfirmationInFlight is returned when another instance is already
	// reconciling a confirmation for the same amount.
	ErrConfirmationInFlight = errors.New("confirmation already being processed")

	// ErrStoreUnavailable wraps durable store failures. The caller may retry:
	// the durable write is idempotent.
	ErrStoreUnavailable = errors.New("transaction store unavailable")

	// ErrMissingFields is returned when a status query omits a required field.
	ErrMissingFields = errors.New("missing required fields")
)
