package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"paygate/internal/domain"
)

func TestTryCreate_NewAmount_Succeeds(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	sess, err := r.TryCreate("a@b.com", 500, 300*time.Second)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if sess.Reference == "" {
		t.Error("expected reference to be set")
	}
	if sess.Status != domain.SessionStatusPending {
		t.Errorf("expected PENDING, got %s", sess.Status)
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Error("expected expiry after creation")
	}
}

func TestTryCreate_AmountLocked_ReturnsLockedError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	if _, err := r.TryCreate("a@b.com", 500, 300*time.Second); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := r.TryCreate("c@d.com", 500, 300*time.Second)
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError, got: %v", err)
	}

	if locked.RemainingSeconds <= 0 || locked.RemainingSeconds > 300 {
		t.Errorf("unexpected remaining seconds: %d", locked.RemainingSeconds)
	}
}

func TestTryCreate_CompletedButUnexpired_StillBlocks(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	sess, err := r.TryCreate("a@b.com", 750, 300*time.Second)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := r.Complete(750, sess.Reference); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// The lock granularity is the amount, not the payment.
	_, err = r.TryCreate("c@d.com", 750, 300*time.Second)
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError for completed-but-unexpired session, got: %v", err)
	}
}

func TestTryCreate_ExpiredSession_Superseded(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	first, err := r.TryCreate("a@b.com", 500, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	second, err := r.TryCreate("c@d.com", 500, 300*time.Second)
	if err != nil {
		t.Fatalf("expected fresh intent to succeed after expiry, got: %v", err)
	}
	if second.Reference == first.Reference {
		t.Error("expected a fresh reference for the superseding session")
	}
}

func TestTryCreate_Concurrent_ExactlyOneSuccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	const n = 50
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = r.TryCreate("a@b.com", 999.99, 300*time.Second)
		}(i)
	}
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range results {
		var locked *LockedError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &locked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	if _, err := r.TryCreate("a@b.com", 100, 300*time.Second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got := r.Get(100)
	if got == nil {
		t.Fatal("expected session")
	}
	got.Status = domain.SessionStatusCompleted

	if r.Get(100).Status != domain.SessionStatusPending {
		t.Error("mutating the returned session must not affect the registry")
	}
}

func TestGet_MissingAmount_ReturnsNil(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if got := r.Get(123.45); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestComplete_Pending_Transitions(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	sess, _ := r.TryCreate("a@b.com", 200, 300*time.Second)

	if err := r.Complete(200, sess.Reference); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got := r.Get(200)
	if got.Status != domain.SessionStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", got.Status)
	}
	if got.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
}

func TestComplete_Twice_ReturnsAlreadyCompleted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	sess, _ := r.TryCreate("a@b.com", 200, 300*time.Second)
	if err := r.Complete(200, sess.Reference); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}

	if err := r.Complete(200, sess.Reference); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got: %v", err)
	}

	// The transition is monotonic: status and reference survive the retry.
	got := r.Get(200)
	if got.Status != domain.SessionStatusCompleted || got.Reference != sess.Reference {
		t.Error("completed session must not change on duplicate completion")
	}
}

func TestComplete_WrongReference_ReturnsMismatch(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	r.TryCreate("a@b.com", 200, 300*time.Second)

	if err := r.Complete(200, "PAY-0-deadbeef"); !errors.Is(err, ErrReferenceMismatch) {
		t.Errorf("expected ErrReferenceMismatch, got: %v", err)
	}

	if r.Get(200).Status != domain.SessionStatusPending {
		t.Error("mismatched completion must not mutate the session")
	}
}

func TestComplete_MissingAmount_ReturnsNotFound(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Complete(42, "ref"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got: %v", err)
	}
}

func TestComplete_ConcurrentDuplicates_OneTransition(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	sess, _ := r.TryCreate("a@b.com", 300, 300*time.Second)

	const n = 20
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Complete(300, sess.Reference)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrAlreadyCompleted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly one Pending->Completed transition, got %d", successes)
	}
}

func TestIncrementAttempts_CountsEveryCall(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.TryCreate("a@b.com", 300, 300*time.Second)

	for want := 1; want <= 3; want++ {
		got, err := r.IncrementAttempts(300)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d attempts, got %d", want, got)
		}
	}
}

func TestReclaim_MatchingReference_Removes(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	sess, _ := r.TryCreate("a@b.com", 400, 300*time.Second)

	r.Reclaim(400, sess.Reference)

	if r.Get(400) != nil {
		t.Error("expected session to be reclaimed")
	}
}

func TestReclaim_StaleReference_LeavesEntry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.TryCreate("a@b.com", 400, 300*time.Second)

	r.Reclaim(400, "PAY-0-other")

	if r.Get(400) == nil {
		t.Error("reclaim with a stale reference must not remove the session")
	}
}

func TestSweep_RemovesOnlyExpiredPastGrace(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.TryCreate("a@b.com", 10, 10*time.Millisecond)
	r.TryCreate("a@b.com", 20, time.Hour)

	r.sweep(time.Now().Add(5 * time.Second))

	if r.Get(10) != nil {
		t.Error("expected expired session to be swept")
	}
	if r.Get(20) == nil {
		t.Error("live session must survive the sweep")
	}
}

func TestSweeper_Background_ReclaimsExpired(t *testing.T) {
	t.Parallel()

	r := NewRegistryWithSweepInterval(10 * time.Millisecond)
	r.TryCreate("a@b.com", 55, 1*time.Millisecond)
	r.Start()
	defer r.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.Len() == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("expected background sweeper to reclaim the expired session")
}

func TestAmountKey_Canonicalizes(t *testing.T) {
	t.Parallel()

	if AmountKey(500) != AmountKey(500.00) {
		t.Error("expected 500 and 500.00 to share a key")
	}
	if AmountKey(500) == AmountKey(500.01) {
		t.Error("expected distinct keys for distinct amounts")
	}
}

func TestValidAmount(t *testing.T) {
	t.Parallel()

	valid := []float64{1, 0.01, 500, 99999.99}
	for _, v := range valid {
		if !ValidAmount(v) {
			t.Errorf("expected %v to be valid", v)
		}
	}

	invalid := []float64{0, -1, -0.01}
	for _, v := range invalid {
		if ValidAmount(v) {
			t.Errorf("expected %v to be invalid", v)
		}
	}
}
