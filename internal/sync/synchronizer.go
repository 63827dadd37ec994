package sync

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/wallet"
)

type Trigger int

const (
	TriggerInitial Trigger = iota
	TriggerUser
	TriggerTimer
)

func (t Trigger) String() string {
	switch t {
	case TriggerInitial:
		return "initial"
	case TriggerUser:
		return "user"
	case TriggerTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// TimerState is the periodic-refresh circuit breaker. A rate-limited query
// trips it; only an explicit re-enable (user action or reconnect) arms it
// again.
type TimerState int

const (
	TimerEnabled TimerState = iota
	TimerDisabledByRateLimit
)

// ThrottledError is the "too soon" notice for a refresh inside the
// cooldown window. Nothing is mutated when it is returned.
type ThrottledError struct {
	Wait time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("refresh throttled, retry in %s", e.Wait.Round(time.Second))
}

// Result carries one refresh's resolved sub-fetches. Nil balance pointers
// mean the fetch did not resolve that value; Err marks the whole refresh
// failed.
type Result struct {
	Native  *uint64
	Token   *uint64
	History []string
	Err     error
}

// Synchronizer owns the balance snapshot and history list and decides which
// refresh results may touch them. It runs inside the single event loop and
// needs no locking: Begin allocates issue-ordered tickets, Apply discards
// any ticket at or below the last applied one, so a slow earlier fetch can
// never overwrite a faster later one.
type Synchronizer struct {
	cooldown time.Duration
	logger   *zap.Logger

	lastRefreshAt time.Time
	issued        uint64
	applied       uint64

	snapshot models.BalanceSnapshot
	history  []string
	timer    TimerState
}

func New(cooldown time.Duration, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		cooldown: cooldown,
		logger:   logger.Named("sync"),
		timer:    TimerEnabled,
	}
}

// Begin gates and registers a refresh, returning its ticket. User and timer
// triggers share the cooldown gate; a gated user refresh gets the throttled
// notice while the caller drops a gated timer tick silently. The initial
// refresh after connecting bypasses the gate.
func (s *Synchronizer) Begin(trigger Trigger, now time.Time) (uint64, error) {
	if trigger != TriggerInitial && !s.lastRefreshAt.IsZero() {
		if elapsed := now.Sub(s.lastRefreshAt); elapsed < s.cooldown {
			return 0, &ThrottledError{Wait: s.cooldown - elapsed}
		}
	}

	s.lastRefreshAt = now
	s.issued++

	s.logger.Debug("refresh issued",
		zap.String("trigger", trigger.String()),
		zap.Uint64("ticket", s.issued))

	return s.issued, nil
}

// Apply resolves a refresh. Stale tickets (superseded by a later-issued
// refresh, or invalidated by Reset) are discarded without effect. A failed
// refresh leaves the previous snapshot intact and trips the timer breaker
// when the failure is rate limiting.
func (s *Synchronizer) Apply(ticket uint64, result Result, now time.Time) (bool, error) {
	if ticket == 0 || ticket <= s.applied {
		s.logger.Debug("stale refresh discarded", zap.Uint64("ticket", ticket))
		return false, nil
	}
	s.applied = ticket

	if result.Err != nil {
		if classified := wallet.Classify(result.Err); classified.Kind == wallet.ErrRateLimited {
			s.timer = TimerDisabledByRateLimit
			s.logger.Warn("periodic refresh disabled by rate limiting")
		}
		return false, result.Err
	}

	s.snapshot = models.BalanceSnapshot{
		Native: result.Native,
		Token:  result.Token,
		AsOf:   now,
	}

	history := result.History
	if len(history) > models.HistoryWindow {
		history = history[:models.HistoryWindow]
	}
	s.history = append([]string(nil), history...)

	return true, nil
}

func (s *Synchronizer) Snapshot() models.BalanceSnapshot {
	return s.snapshot
}

// History returns the stored signature references, most recent first.
func (s *Synchronizer) History() []string {
	return append([]string(nil), s.history...)
}

func (s *Synchronizer) TimerEnabled() bool {
	return s.timer == TimerEnabled
}

func (s *Synchronizer) TimerState() TimerState {
	return s.timer
}

// EnableTimer re-arms the periodic refresh after a rate-limit trip.
func (s *Synchronizer) EnableTimer() {
	s.timer = TimerEnabled
}

// Reset discards all outstanding tickets and clears state. Called when the
// session disconnects so in-flight fetch results land harmlessly.
func (s *Synchronizer) Reset() {
	s.applied = s.issued
	s.snapshot = models.BalanceSnapshot{}
	s.history = nil
	s.lastRefreshAt = time.Time{}
	s.timer = TimerEnabled
}
