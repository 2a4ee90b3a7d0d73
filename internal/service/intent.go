package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"paygate/internal/config"
	"paygate/internal/session"
)

// QREncoder renders a payment link as an encoded image. QR rendering is an
// external collaborator; the service only depends on this interface.
type QREncoder interface {
	Encode(payload string) (string, error)
}

// MockQREncoder is a mock implementation of QREncoder for testing and local
// runs. It returns the payload as a plain base64 data URL.
type MockQREncoder struct{}

// NewMockQREncoder creates a new mock QR encoder.
func NewMockQREncoder() *MockQREncoder {
	return &MockQREncoder{}
}

// Encode returns a data URL embedding the payload.
func (e *MockQREncoder) Encode(payload string) (string, error) {
	return "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

// IntentService builds payment requests and registers their sessions.
type IntentService struct {
	registry *session.Registry
	qr       QREncoder
	cfg      config.PaymentConfig
}

// NewIntentService creates a new IntentService.
func NewIntentService(registry *session.Registry, qr QREncoder, cfg config.PaymentConfig) *IntentService {
	return &IntentService{
		registry: registry,
		qr:       qr,
		cfg:      cfg,
	}
}

// CreateIntentRequest contains the parameters for creating a payment intent.
type CreateIntentRequest struct {
	PayerContact string
	Amount       float64
}

// ProviderLinks holds per-provider app intent variants of the payment link.
type ProviderLinks struct {
	GPay    string
	PhonePe string
	Paytm   string
}

// CreateIntentResponse contains the generated payment request.
type CreateIntentResponse struct {
	PaymentLink      string
	QRImage          string
	Reference        string
	ExpiresInSeconds int
	Apps             ProviderLinks
}

// CreateIntent validates the request, locks the amount by registering a
// session, and builds the deep link, QR payload and provider variants. While
// another unexpired session holds the amount, a *session.LockedError is
// returned with the remaining seconds.
func (s *IntentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	if !strings.Contains(req.PayerContact, "@") {
		return nil, ErrInvalidContact
	}
	if !session.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	sess, err := s.registry.TryCreate(req.PayerContact, req.Amount, s.cfg.SessionTimeout)
	if err != nil {
		return nil, err
	}

	link := s.buildPaymentLink(req.Amount, sess.Reference)

	qrImage, err := s.qr.Encode(link)
	if err != nil {
		// The session stays registered; the client can retry the QR fetch by
		// polling, but intent creation itself has failed.
		return nil, fmt.Errorf("qr encoding failed: %w", err)
	}

	return &CreateIntentResponse{
		PaymentLink:      link,
		QRImage:          qrImage,
		Reference:        sess.Reference,
		ExpiresInSeconds: int(s.cfg.SessionTimeout.Seconds()),
		Apps:             providerVariants(link),
	}, nil
}

// buildPaymentLink assembles the UPI deep link embedding the session reference.
func (s *IntentService) buildPaymentLink(amount float64, reference string) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		s.cfg.UPIID,
		url.QueryEscape(s.cfg.BusinessName),
		strconv.FormatFloat(amount, 'f', -1, 64),
		reference,
	)
}

// providerVariants wraps the deep link in Android intent URLs for the common
// UPI apps.
func providerVariants(link string) ProviderLinks {
	variant := func(pkg string) string {
		return fmt.Sprintf("intent://%s#Intent;scheme=upi;package=%s;end", link, pkg)
	}
	return ProviderLinks{
		GPay:    variant("com.google.android.apps.nbu.paisa.user"),
		PhonePe: variant("com.phonepe.app"),
		Paytm:   variant("net.one97.paytm"),
	}
}
