package sync

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"passterm/solWallet/internal/models"
)

func newTestSynchronizer() *Synchronizer {
	return New(10*time.Second, zap.NewNop())
}

func TestBeginCooldown(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Initial refresh always passes and stamps the gate.
	if _, err := s.Begin(TriggerInitial, base); err != nil {
		t.Fatalf("Expected initial refresh to pass, got %v", err)
	}

	// User refresh 3s later is inside the window.
	_, err := s.Begin(TriggerUser, base.Add(3*time.Second))
	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("Expected ThrottledError at +3s, got %v", err)
	}
	if throttled.Wait != 7*time.Second {
		t.Errorf("Expected 7s remaining, got %s", throttled.Wait)
	}

	// The throttled attempt must not restamp the gate: +11s from the
	// original refresh is past the cooldown.
	if _, err := s.Begin(TriggerUser, base.Add(11*time.Second)); err != nil {
		t.Errorf("Expected refresh at +11s to pass, got %v", err)
	}
}

func TestBeginTimerSharesGate(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Now()

	if _, err := s.Begin(TriggerUser, base); err != nil {
		t.Fatalf("Expected first user refresh to pass, got %v", err)
	}
	if _, err := s.Begin(TriggerTimer, base.Add(5*time.Second)); err == nil {
		t.Error("Expected timer refresh inside cooldown to be gated")
	}
	if _, err := s.Begin(TriggerTimer, base.Add(15*time.Second)); err != nil {
		t.Errorf("Expected timer refresh after cooldown to pass, got %v", err)
	}
}

func TestApplyUpdatesSnapshot(t *testing.T) {
	s := newTestSynchronizer()
	now := time.Now()

	ticket, err := s.Begin(TriggerInitial, now)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	applied, err := s.Apply(ticket, Result{
		Native:  models.Uint64Ptr(2_500_000_000),
		Token:   models.Uint64Ptr(10_000_000),
		History: []string{"sig1", "sig2"},
	}, now)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !applied {
		t.Fatal("Expected result to be applied")
	}

	snap := s.Snapshot()
	if !snap.NativeKnown() || *snap.Native != 2_500_000_000 {
		t.Errorf("Expected native balance 2500000000, got %v", snap.Native)
	}
	if !snap.TokenKnown() || *snap.Token != 10_000_000 {
		t.Errorf("Expected token balance 10000000, got %v", snap.Token)
	}
	if got := s.History(); len(got) != 2 || got[0] != "sig1" {
		t.Errorf("Unexpected history: %v", got)
	}
}

func TestApplyDiscardsStaleTicket(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Now()

	t1, _ := s.Begin(TriggerInitial, base)
	t2, _ := s.Begin(TriggerTimer, base.Add(time.Minute))

	// The later-issued refresh resolves first.
	if applied, _ := s.Apply(t2, Result{Native: models.Uint64Ptr(200)}, base.Add(time.Minute)); !applied {
		t.Fatal("Expected later ticket to apply")
	}
	// The earlier one resolving afterwards must not overwrite it.
	if applied, _ := s.Apply(t1, Result{Native: models.Uint64Ptr(100)}, base.Add(2*time.Minute)); applied {
		t.Fatal("Expected earlier ticket to be discarded")
	}

	if snap := s.Snapshot(); *snap.Native != 200 {
		t.Errorf("Expected balance from the later refresh, got %d", *snap.Native)
	}
}

func TestApplyFailureKeepsSnapshot(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Now()

	t1, _ := s.Begin(TriggerInitial, base)
	if _, err := s.Apply(t1, Result{Native: models.Uint64Ptr(500), History: []string{"sig"}}, base); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	t2, _ := s.Begin(TriggerTimer, base.Add(time.Minute))
	applied, err := s.Apply(t2, Result{Err: errors.New("connection refused")}, base.Add(time.Minute))
	if applied {
		t.Error("Expected failed refresh not to apply")
	}
	if err == nil {
		t.Error("Expected failure error to surface")
	}

	if snap := s.Snapshot(); !snap.NativeKnown() || *snap.Native != 500 {
		t.Errorf("Expected previous snapshot to survive, got %v", snap.Native)
	}
	if got := s.History(); len(got) != 1 {
		t.Errorf("Expected previous history to survive, got %v", got)
	}
	if !s.TimerEnabled() {
		t.Error("Generic failure must not trip the timer breaker")
	}
}

func TestRateLimitTripsTimerBreaker(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Now()

	t1, _ := s.Begin(TriggerInitial, base)
	if _, err := s.Apply(t1, Result{Err: errors.New("429 Too Many Requests")}, base); err == nil {
		t.Fatal("Expected rate-limit error to surface")
	}

	if s.TimerEnabled() {
		t.Fatal("Expected rate limit to disable the periodic timer")
	}
	if s.TimerState() != TimerDisabledByRateLimit {
		t.Errorf("Unexpected timer state %v", s.TimerState())
	}

	s.EnableTimer()
	if !s.TimerEnabled() {
		t.Error("Expected EnableTimer to re-arm the timer")
	}
}

func TestHistoryBounded(t *testing.T) {
	s := newTestSynchronizer()
	now := time.Now()

	long := []string{"a", "b", "c", "d", "e", "f", "g"}
	ticket, _ := s.Begin(TriggerInitial, now)
	if _, err := s.Apply(ticket, Result{History: long}, now); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := s.History(); len(got) != models.HistoryWindow {
		t.Errorf("Expected history capped at %d, got %d", models.HistoryWindow, len(got))
	}
}

func TestResetDropsInFlight(t *testing.T) {
	s := newTestSynchronizer()
	base := time.Now()

	ticket, _ := s.Begin(TriggerInitial, base)
	s.Reset()

	// A fetch issued before the disconnect resolves afterwards.
	if applied, _ := s.Apply(ticket, Result{Native: models.Uint64Ptr(999)}, base.Add(time.Second)); applied {
		t.Fatal("Expected in-flight ticket to be dropped after Reset")
	}

	snap := s.Snapshot()
	if snap.NativeKnown() || snap.TokenKnown() {
		t.Error("Expected snapshot cleared after Reset")
	}
	if len(s.History()) != 0 {
		t.Error("Expected history cleared after Reset")
	}
	if !s.TimerEnabled() {
		t.Error("Expected timer re-armed after Reset")
	}

	// The gate is clear again: a fresh session refreshes immediately.
	if _, err := s.Begin(TriggerUser, base.Add(time.Second)); err != nil {
		t.Errorf("Expected refresh after Reset to pass, got %v", err)
	}
}
