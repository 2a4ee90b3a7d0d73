package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"paygate/internal/domain"
	"paygate/internal/service"
	"paygate/internal/session"
)

func TestCheckStatus_PendingSession_NotYet(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	svc := service.NewStatusService(registry, NewMockTransactionRepository(), nil)

	sess, _ := registry.TryCreate("a@b.com", 500, 300*time.Second)

	result, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    sess.Reference,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Success {
		t.Error("pending session must not report success")
	}
	if result.RemainingSeconds <= 0 || result.RemainingSeconds > 300 {
		t.Errorf("unexpected remaining seconds: %d", result.RemainingSeconds)
	}
}

func TestCheckStatus_CompletedSession_Success(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	svc := service.NewStatusService(registry, NewMockTransactionRepository(), nil)

	sess, _ := registry.TryCreate("a@b.com", 500, 300*time.Second)
	if err := registry.Complete(500, sess.Reference); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	result, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    sess.Reference,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.Success {
		t.Error("completed session must report success")
	}
}

func TestCheckStatus_ReclaimedSession_FallsBackToStore(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	repo := NewMockTransactionRepository()
	svc := service.NewStatusService(registry, repo, nil)

	// The session completed and was reclaimed; only the durable record remains.
	repo.Upsert(context.Background(), &domain.ProcessedTransaction{
		TransactionKey: "sms_ABC123",
		Source:         domain.SourceSMS,
		PayerContact:   "a@b.com",
		Amount:         500,
		Identifier:     "ABC123",
		Reference:      "PAY-1-11111111",
		Status:         domain.TransactionStatusCompleted,
	})

	result, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    "PAY-1-11111111",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.Success {
		t.Error("durable record must answer polls after reclamation")
	}
}

func TestCheckStatus_ReferenceMismatch_FallsThrough(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	svc := service.NewStatusService(registry, NewMockTransactionRepository(), nil)

	registry.TryCreate("a@b.com", 500, 300*time.Second)

	result, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    "PAY-9-99999999",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Success {
		t.Error("a mismatched reference must not report success")
	}
	if result.Message == "" {
		t.Error("expected a not-found message")
	}
}

func TestCheckStatus_UnknownPayment_NotFoundMessage(t *testing.T) {
	t.Parallel()

	svc := service.NewStatusService(session.NewRegistry(), NewMockTransactionRepository(), nil)

	result, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    "PAY-1-00000000",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Success {
		t.Error("unknown payment must not report success")
	}
	if result.Message != "No active payment session found" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestCheckStatus_MissingFields_Rejected(t *testing.T) {
	t.Parallel()

	svc := service.NewStatusService(session.NewRegistry(), NewMockTransactionRepository(), nil)

	testCases := []service.StatusRequest{
		{Amount: 500, Reference: "R"},
		{PayerContact: "a@b.com", Reference: "R"},
		{PayerContact: "a@b.com", Amount: 500},
	}
	for _, req := range testCases {
		if _, err := svc.CheckStatus(context.Background(), req); !errors.Is(err, service.ErrMissingFields) {
			t.Errorf("expected ErrMissingFields for %+v, got: %v", req, err)
		}
	}
}

func TestCheckStatus_StoreFailure_Surfaced(t *testing.T) {
	t.Parallel()

	repo := NewMockTransactionRepository()
	repo.FindCompletedError = errors.New("connection refused")
	svc := service.NewStatusService(session.NewRegistry(), repo, nil)

	_, err := svc.CheckStatus(context.Background(), service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    "PAY-1-00000000",
	})
	if !errors.Is(err, service.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got: %v", err)
	}
}

func TestCheckStatus_DurableHit_PopulatesCache(t *testing.T) {
	t.Parallel()

	repo := NewMockTransactionRepository()
	cache := NewMockCacheStore()
	svc := service.NewStatusService(session.NewRegistry(), repo, cache)

	repo.Upsert(context.Background(), &domain.ProcessedTransaction{
		TransactionKey: "sms_ABC123",
		Source:         domain.SourceSMS,
		PayerContact:   "a@b.com",
		Amount:         500,
		Identifier:     "ABC123",
		Reference:      "PAY-1-11111111",
		Status:         domain.TransactionStatusCompleted,
	})

	req := service.StatusRequest{
		PayerContact: "a@b.com",
		Amount:       500,
		Reference:    "PAY-1-11111111",
	}

	if result, err := svc.CheckStatus(context.Background(), req); err != nil || !result.Success {
		t.Fatalf("first poll: result=%+v err=%v", result, err)
	}
	if cache.SetCallCount != 1 {
		t.Errorf("expected the durable hit to be cached, set calls=%d", cache.SetCallCount)
	}

	// Second poll is served from cache.
	if result, err := svc.CheckStatus(context.Background(), req); err != nil || !result.Success {
		t.Fatalf("second poll: result=%+v err=%v", result, err)
	}
	if cache.GetCallCount < 2 {
		t.Errorf("expected cache reads on both polls, got %d", cache.GetCallCount)
	}
}
