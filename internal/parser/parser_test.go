package parser

import (
	"errors"
	"testing"

	"paygate/internal/domain"
)

func TestParseSMS(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		text           string
		wantAmount     float64
		wantIdentifier string
		wantErrField   string
	}{
		{
			name:           "rupee abbreviation with UPI credit ref",
			text:           "Rs. 500 credited. UPI/CREDIT/ABC123XYZ",
			wantAmount:     500,
			wantIdentifier: "ABC123XYZ",
		},
		{
			name:           "currency symbol",
			text:           "₹250.50 credited to your account. UPI/CREDIT/XYZ789",
			wantAmount:     250.50,
			wantIdentifier: "XYZ789",
		},
		{
			name:           "ISO prefix with Ref marker",
			text:           "INR 1200 received. Ref: TXN44556",
			wantAmount:     1200,
			wantIdentifier: "TXN44556",
		},
		{
			name:           "credit marker with mixed separators",
			text:           "Rs 99.99 credited UPI-CREDIT-REF001",
			wantAmount:     99.99,
			wantIdentifier: "REF001",
		},
		{
			name:           "lowercase markers",
			text:           "rs. 75 credited. upi/credit/lowref",
			wantAmount:     75,
			wantIdentifier: "lowref",
		},
		{
			name:         "no payment content",
			text:         "Your OTP is 1234",
			wantErrField: "amount",
		},
		{
			name:         "amount without reference",
			text:         "Rs. 500 credited to your account",
			wantErrField: "UPI ref",
		},
		{
			name:         "reference without amount",
			text:         "Credited. UPI/CREDIT/ABC123",
			wantErrField: "amount",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event, err := ParseSMS(tc.text, "AX-HDFCBK")

			if tc.wantErrField != "" {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got: %v", err)
				}
				if parseErr.Field != tc.wantErrField {
					t.Errorf("expected missing field %q, got %q", tc.wantErrField, parseErr.Field)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if event.Source != domain.SourceSMS {
				t.Errorf("expected sms source, got %s", event.Source)
			}
			if event.Amount != tc.wantAmount {
				t.Errorf("expected amount %v, got %v", tc.wantAmount, event.Amount)
			}
			if event.Identifier != tc.wantIdentifier {
				t.Errorf("expected identifier %q, got %q", tc.wantIdentifier, event.Identifier)
			}
			if event.RawSender != "AX-HDFCBK" {
				t.Errorf("expected sender to be carried through, got %q", event.RawSender)
			}
		})
	}
}

func TestParseNotification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		text           string
		wantAmount     float64
		wantIdentifier string
		wantErrField   string
	}{
		{
			name:           "amount with transaction id on second line",
			text:           "John paid you ₹250\nTXN9988\nThanks",
			wantAmount:     250,
			wantIdentifier: "TXN9988",
		},
		{
			name:           "decimal amount",
			text:           "Priya paid you ₹99.50\nUPI559912",
			wantAmount:     99.50,
			wantIdentifier: "UPI559912",
		},
		{
			name:         "missing amount phrase",
			text:         "You received a payment\nTXN1122",
			wantErrField: "amount",
		},
		{
			name:         "single line, no transaction id",
			text:         "John paid you ₹250",
			wantErrField: "transaction ID",
		},
		{
			name:         "blank second line",
			text:         "John paid you ₹250\n   \nThanks",
			wantErrField: "transaction ID",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event, err := ParseNotification(tc.text)

			if tc.wantErrField != "" {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got: %v", err)
				}
				if parseErr.Field != tc.wantErrField {
					t.Errorf("expected missing field %q, got %q", tc.wantErrField, parseErr.Field)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if event.Source != domain.SourceAppNotification {
				t.Errorf("expected gpay source, got %s", event.Source)
			}
			if event.Amount != tc.wantAmount {
				t.Errorf("expected amount %v, got %v", tc.wantAmount, event.Amount)
			}
			if event.Identifier != tc.wantIdentifier {
				t.Errorf("expected identifier %q, got %q", tc.wantIdentifier, event.Identifier)
			}
		})
	}
}
