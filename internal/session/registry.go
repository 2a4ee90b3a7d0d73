package session

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygate/internal/domain"
)

var (
	// ErrSessionNotFound is returned when no session exists for the amount.
	ErrSessionNotFound = errors.New("no active payment session for this amount")

	// ErrAlreadyCompleted is returned when completing an already completed session.
	ErrAlreadyCompleted = errors.New("payment session already completed")

	// ErrReferenceMismatch is returned when the supplied reference does not match
	// the session's reference.
	ErrReferenceMismatch = errors.New("transaction reference mismatch")
)

// LockedError is returned by TryCreate while an unexpired session already holds
// the amount. It carries the seconds remaining until the lock clears.
type LockedError struct {
	RemainingSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("payment in progress, retry in %ds", e.RemainingSeconds)
}

const (
	// shardCount controls lock granularity. Operations on different amounts
	// hash to different shards and do not contend.
	shardCount = 32

	// reclaimGrace is how long past expiry the sweeper waits before removing a
	// session. Readers must treat an expired session as gone regardless.
	reclaimGrace = 1 * time.Second

	defaultSweepInterval = 5 * time.Second
)

type shard struct {
	mu       sync.Mutex
	sessions map[string]*domain.PaymentSession
}

// Registry is the in-memory mapping from payment amount to at most one active
// session. All operations are atomic per amount key.
type Registry struct {
	shards        [shardCount]*shard
	sweepInterval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates a session registry with the default sweep interval.
func NewRegistry() *Registry {
	r := &Registry{
		sweepInterval: defaultSweepInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for i := range r.shards {
		r.shards[i] = &shard{sessions: make(map[string]*domain.PaymentSession)}
	}
	return r
}

// NewRegistryWithSweepInterval creates a registry with a custom sweep interval.
func NewRegistryWithSweepInterval(interval time.Duration) *Registry {
	r := NewRegistry()
	r.sweepInterval = interval
	return r
}

// AmountKey canonicalizes an amount to its registry key. Amounts are keyed at
// two decimal places so 500, 500.0 and 500.00 address the same slot.
func AmountKey(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func (r *Registry) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return r.shards[h.Sum32()%shardCount]
}

// TryCreate registers a new Pending session for the amount. It fails with
// *LockedError while an entry exists whose deadline has not passed, regardless
// of that entry's status: the locking granularity is the amount, not the
// payment, so a completed-but-unexpired session still blocks new intents.
func (r *Registry) TryCreate(payerContact string, amount float64, timeout time.Duration) (*domain.PaymentSession, error) {
	key := AmountKey(amount)
	s := r.shardFor(key)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[key]; ok && !existing.Expired(now) {
		return nil, &LockedError{RemainingSeconds: existing.RemainingSeconds(now)}
	}

	sess := &domain.PaymentSession{
		Amount:       amount,
		PayerContact: payerContact,
		Reference:    newReference(now),
		Status:       domain.SessionStatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(timeout),
	}
	s.sessions[key] = sess

	copy := *sess
	return &copy, nil
}

// Get returns a copy of the session for the amount, or nil if none exists.
// Expiry is not checked here; callers compare against ExpiresAt themselves.
func (r *Registry) Get(amount float64) *domain.PaymentSession {
	key := AmountKey(amount)
	s := r.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	copy := *sess
	return &copy
}

// IncrementAttempts bumps the verification attempt counter for the amount's
// session and returns the new count. The counter moves on every matched
// confirmation attempt, successful or not.
func (r *Registry) IncrementAttempts(amount float64) (int, error) {
	key := AmountKey(amount)
	s := r.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return 0, ErrSessionNotFound
	}
	sess.VerificationAttempts++
	return sess.VerificationAttempts, nil
}

// Complete transitions the amount's session from Pending to Completed. The
// transition is monotonic and happens at most once: a session that is already
// Completed, missing, or holds a different reference is left untouched and the
// specific failure is returned.
func (r *Registry) Complete(amount float64, reference string) error {
	key := AmountKey(amount)
	s := r.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.Reference != reference {
		return ErrReferenceMismatch
	}
	if sess.Status == domain.SessionStatusCompleted {
		return ErrAlreadyCompleted
	}

	sess.Status = domain.SessionStatusCompleted
	sess.CompletedAt = time.Now()
	return nil
}

// Reclaim removes the amount's entry only if it still holds the given
// reference. The guard prevents removing a session that replaced the expired
// one between the sweep decision and the delete.
func (r *Registry) Reclaim(amount float64, reference string) {
	key := AmountKey(amount)
	s := r.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok && sess.Reference == reference {
		delete(s.sessions, key)
	}
}

// Len returns the number of live entries across all shards.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.sessions)
		s.mu.Unlock()
	}
	return n
}

// Start launches the background sweeper that reclaims expired sessions.
func (r *Registry) Start() {
	go r.sweepLoop()
}

// Stop terminates the sweeper and waits for it to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Registry) sweepLoop() {
	defer close(r.done)

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

// sweep removes every session whose deadline plus grace has passed. This is
// best effort: a reader can observe a stale entry between its expiry and the
// next tick, which is why all read paths also check ExpiresAt.
func (r *Registry) sweep(now time.Time) {
	cutoff := now.Add(-reclaimGrace)
	for _, s := range r.shards {
		s.mu.Lock()
		for key, sess := range s.sessions {
			if sess.ExpiresAt.Before(cutoff) {
				delete(s.sessions, key)
			}
		}
		s.mu.Unlock()
	}
}

// newReference generates a globally unique transaction reference.
func newReference(now time.Time) string {
	return fmt.Sprintf("PAY-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// ValidAmount reports whether the amount is a usable registry key: finite and
// strictly positive.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}
