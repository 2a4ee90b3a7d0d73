package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"paygate/internal/domain"
	"paygate/internal/redis"
	"paygate/internal/repository"
	"paygate/internal/session"
)

// StatusService answers whether a payment has completed, checking the
// in-memory session first and falling back to the durable store. The fallback
// exists because sessions are reclaimed on a timer independent of whether the
// client has finished polling.
type StatusService struct {
	registry   *session.Registry
	txnRepo    repository.TransactionRepository
	cacheStore redis.CacheStoreInterface
}

// NewStatusService creates a new StatusService. cacheStore may be nil.
func NewStatusService(registry *session.Registry, txnRepo repository.TransactionRepository, cacheStore redis.CacheStoreInterface) *StatusService {
	return &StatusService{
		registry:   registry,
		txnRepo:    txnRepo,
		cacheStore: cacheStore,
	}
}

// StatusRequest identifies the payment being polled.
type StatusRequest struct {
	PayerContact string
	Amount       float64
	Reference    string
}

// StatusResult is the poll outcome.
type StatusResult struct {
	Success          bool
	RemainingSeconds int
	Message          string
}

// CheckStatus reports whether the payment identified by the request has
// completed.
func (s *StatusService) CheckStatus(ctx context.Context, req StatusRequest) (*StatusResult, error) {
	if req.PayerContact == "" || req.Reference == "" || !session.ValidAmount(req.Amount) {
		return nil, ErrMissingFields
	}

	// Tier 1: live session.
	if sess := s.registry.Get(req.Amount); sess != nil && sess.Reference == req.Reference {
		if sess.Status == domain.SessionStatusCompleted {
			return &StatusResult{Success: true}, nil
		}
		return &StatusResult{
			Success:          false,
			RemainingSeconds: sess.RemainingSeconds(time.Now()),
		}, nil
	}

	// Tier 2: cached durable lookup.
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetStatus(ctx, req.Reference)
		if err != nil {
			log.Printf("status cache read failed: %v", err)
		} else if cached != nil && cached.Completed &&
			cached.PayerContact == req.PayerContact && cached.Amount == req.Amount {
			return &StatusResult{Success: true}, nil
		}
	}

	// Tier 3: durable store.
	txn, err := s.txnRepo.FindCompleted(ctx, req.PayerContact, req.Amount, req.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &StatusResult{
				Success: false,
				Message: "No active payment session found",
			}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.cacheStore != nil {
		cacheErr := s.cacheStore.SetStatus(ctx, &redis.CachedStatus{
			PayerContact: txn.PayerContact,
			Amount:       txn.Amount,
			Reference:    txn.Reference,
			Completed:    true,
		})
		if cacheErr != nil {
			log.Printf("status cache write failed: %v", cacheErr)
		}
	}

	return &StatusResult{Success: true}, nil
}
