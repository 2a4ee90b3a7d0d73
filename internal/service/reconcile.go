package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"paygate/internal/domain"
	"paygate/internal/parser"
	"paygate/internal/redis"
	"paygate/internal/repository"
	"paygate/internal/session"
)

// amountLockTTL bounds how long a reconciliation can hold the cross-instance
// amount lock before it self-expires.
const amountLockTTL = 10 * time.Second

// ReconcileService matches parsed confirmations to pending sessions and
// performs the idempotent durable write plus session completion.
type ReconcileService struct {
	registry      *session.Registry
	txnRepo       repository.TransactionRepository
	lockStore     redis.LockStoreInterface
	notifier      Notifier
	maxAttempts   int
	notifyTimeout time.Duration
}

// NewReconcileService creates a new ReconcileService. lockStore and notifier
// may be nil; both are optional collaborators.
func NewReconcileService(
	registry *session.Registry,
	txnRepo repository.TransactionRepository,
	lockStore redis.LockStoreInterface,
	notifier Notifier,
	maxAttempts int,
	notifyTimeout time.Duration,
) *ReconcileService {
	return &ReconcileService{
		registry:      registry,
		txnRepo:       txnRepo,
		lockStore:     lockStore,
		notifier:      notifier,
		maxAttempts:   maxAttempts,
		notifyTimeout: notifyTimeout,
	}
}

// ConfirmationRequest is a raw confirmation payload forwarded by a client
// device. Exactly one of SMSText / NotificationText must be set.
type ConfirmationRequest struct {
	Sender           string
	SMSText          string
	NotificationText string
}

// ConfirmationResult is the outcome of a successfully reconciled confirmation.
type ConfirmationResult struct {
	PayerContact string
	Reference    string
	Status       domain.TransactionStatus
}

// ProcessConfirmation runs one confirmation attempt end to end:
// parse, session lookup, attempt accounting, idempotent durable write,
// session completion, best-effort notification.
func (s *ReconcileService) ProcessConfirmation(ctx context.Context, req ConfirmationRequest) (*ConfirmationResult, error) {
	event, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	// Cross-instance guard: one reconciliation per amount at a time. The
	// in-process registry already serializes same-amount operations.
	if s.lockStore != nil {
		amountKey := session.AmountKey(event.Amount)
		locked, err := s.lockStore.AcquireAmountLock(ctx, amountKey, amountLockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if !locked {
			return nil, ErrConfirmationInFlight
		}
		defer func() {
			_ = s.lockStore.ReleaseAmountLock(ctx, amountKey)
		}()
	}

	sess := s.registry.Get(event.Amount)
	if sess == nil || sess.Expired(time.Now()) {
		return nil, session.ErrSessionNotFound
	}

	// The counter moves on every matched attempt, successful or not, so a
	// flood of replays against one session runs out of attempts even when
	// each replay would otherwise succeed idempotently.
	attempts, err := s.registry.IncrementAttempts(event.Amount)
	if err != nil {
		return nil, session.ErrSessionNotFound
	}
	if attempts > s.maxAttempts {
		log.Printf("excessive verification attempts: contact=%s amount=%.2f reference=%s attempts=%d",
			sess.PayerContact, event.Amount, sess.Reference, attempts)
		return nil, ErrTooManyAttempts
	}

	txn := &domain.ProcessedTransaction{
		TransactionKey: domain.TransactionKey(event.Source, event.Identifier),
		Source:         event.Source,
		PayerContact:   sess.PayerContact,
		RawSender:      senderLabel(event),
		Amount:         event.Amount,
		Identifier:     event.Identifier,
		Reference:      sess.Reference,
		Status:         domain.TransactionStatusCompleted,
	}

	// Conflict-resolution point of record. Safe to repeat; the upstream
	// event source redelivers on 5xx.
	if err := s.txnRepo.Upsert(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The in-memory transition is a latency optimization over the durable
	// record. A duplicate delivery finds the session already completed and a
	// racing reclamation can remove it entirely; both cases are success here
	// because the durable write above has already settled the outcome.
	if err := s.registry.Complete(event.Amount, sess.Reference); err != nil {
		if !errors.Is(err, session.ErrAlreadyCompleted) && !errors.Is(err, session.ErrSessionNotFound) {
			return nil, err
		}
	}

	s.notify(ctx, event, sess.PayerContact)

	log.Printf("payment processed: contact=%s amount=%.2f identifier=%s source=%s reference=%s",
		sess.PayerContact, event.Amount, event.Identifier, event.Source, sess.Reference)

	return &ConfirmationResult{
		PayerContact: sess.PayerContact,
		Reference:    sess.Reference,
		Status:       domain.TransactionStatusCompleted,
	}, nil
}

// parse selects the grammar by which payload field is present.
func (s *ReconcileService) parse(req ConfirmationRequest) (*domain.ConfirmationEvent, error) {
	switch {
	case req.SMSText != "":
		return parser.ParseSMS(req.SMSText, req.Sender)
	case req.NotificationText != "":
		return parser.ParseNotification(req.NotificationText)
	default:
		return nil, ErrMissingPayload
	}
}

// notify delivers the completion notification within a short time budget.
// Failures never fail the reconciliation.
func (s *ReconcileService) notify(ctx context.Context, event *domain.ConfirmationEvent, payerContact string) {
	if s.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	text := fmt.Sprintf("✅ ₹%.2f payment from %s → %s", event.Amount, senderLabel(event), payerContact)
	if err := s.notifier.Send(notifyCtx, text); err != nil {
		log.Printf("chat notification failed: %v", err)
	}
}

// senderLabel returns the free-text sender, defaulting app notifications to
// their provider name.
func senderLabel(event *domain.ConfirmationEvent) string {
	if event.RawSender != "" {
		return event.RawSender
	}
	if event.Source == domain.SourceAppNotification {
		return "Google Pay"
	}
	return ""
}
