// Package parser extracts a monetary amount and a channel-specific identifier
// from the two unstructured confirmation text shapes the service accepts:
// bank SMS messages and payment-app notifications. Parsing is pure with
// respect to its input and performs no I/O.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paygate/internal/domain"
)

// ParseError is a hard parse failure naming the field that could not be
// extracted. Parse failures are never retried.
type ParseError struct {
	Source domain.ConfirmationSource
	Field  string
}

func (e *ParseError) Error() string {
	switch e.Source {
	case domain.SourceSMS:
		return fmt.Sprintf("missing %s in SMS", e.Field)
	case domain.SourceAppNotification:
		return fmt.Sprintf("missing %s in app notification", e.Field)
	}
	return fmt.Sprintf("missing %s", e.Field)
}

var (
	// Amount token: a currency symbol or abbreviated prefix followed by up to
	// two decimal places, e.g. "₹500", "Rs. 500", "INR 250.50".
	smsAmountRe = regexp.MustCompile(`(?i)(?:₹|INR|Rs\.?)\s*(\d+(?:\.\d{1,2})?)`)

	// Reference token: a "UPI/CREDIT/<ref>" marker tolerant of separators, or a
	// "Ref: <ref>" marker.
	smsCreditRefRe = regexp.MustCompile(`(?i)UPI[/\s\-]*CREDIT[/\s\-]*(\w+)`)
	smsLabelRefRe  = regexp.MustCompile(`(?i)Ref\s*:\s*(\w+)`)

	// App notification amount: fixed "paid you ₹<amount>" phrase.
	notificationAmountRe = regexp.MustCompile(`(?i)paid you ₹(\d+(?:\.\d{1,2})?)`)
)

// ParseSMS extracts amount and UPI reference from a bank SMS. Both tokens must
// be present.
func ParseSMS(text, rawSender string) (*domain.ConfirmationEvent, error) {
	amountMatch := smsAmountRe.FindStringSubmatch(text)
	if amountMatch == nil {
		return nil, &ParseError{Source: domain.SourceSMS, Field: "amount"}
	}

	refMatch := smsCreditRefRe.FindStringSubmatch(text)
	if refMatch == nil {
		refMatch = smsLabelRefRe.FindStringSubmatch(text)
	}
	if refMatch == nil {
		return nil, &ParseError{Source: domain.SourceSMS, Field: "UPI ref"}
	}

	amount, err := strconv.ParseFloat(amountMatch[1], 64)
	if err != nil {
		return nil, &ParseError{Source: domain.SourceSMS, Field: "amount"}
	}

	return &domain.ConfirmationEvent{
		Source:     domain.SourceSMS,
		Amount:     amount,
		Identifier: refMatch[1],
		RawSender:  rawSender,
	}, nil
}

// ParseNotification extracts amount and transaction id from a payment-app
// notification. The transaction id is taken positionally from the second line
// of the notification body, matching the format the forwarding app emits.
func ParseNotification(text string) (*domain.ConfirmationEvent, error) {
	amountMatch := notificationAmountRe.FindStringSubmatch(text)
	if amountMatch == nil {
		return nil, &ParseError{Source: domain.SourceAppNotification, Field: "amount"}
	}

	amount, err := strconv.ParseFloat(amountMatch[1], 64)
	if err != nil {
		return nil, &ParseError{Source: domain.SourceAppNotification, Field: "amount"}
	}

	lines := strings.Split(text, "\n")
	var identifier string
	if len(lines) > 1 {
		identifier = strings.TrimSpace(lines[1])
	}
	if identifier == "" {
		return nil, &ParseError{Source: domain.SourceAppNotification, Field: "transaction ID"}
	}

	return &domain.ConfirmationEvent{
		Source:     domain.SourceAppNotification,
		Amount:     amount,
		Identifier: identifier,
	}, nil
}
