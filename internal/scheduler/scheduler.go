package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/benbjohnson/clock"
)

const _rearmTimeout = 5 * time.Second

type State int32

const (
	Idle State = iota
	Armed
	Firing
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Firing:
		return "firing"
	default:
		return "idle"
	}
}

type marketHours interface {
	IsInPollTime() bool
	NextMarketOpen() time.Time
}

type orderSource interface {
	HasOpenOrders(ctx context.Context) (bool, error)
}

// Runner is one execution pass over the open orders.
type Runner interface {
	ExecutionPass(ctx context.Context) error
}

// Scheduler arms a single cancellable one-shot wake-up around market
// hours: a short poll cadence while the market is open, one wake-up at
// the next open while it is closed. Re-arming replaces the pending
// wake-up, never stacks a second one.
type Scheduler struct {
	clock  clock.Clock
	market marketHours
	orders orderSource
	runner Runner

	pollInterval time.Duration
	passTimeout  time.Duration

	mu    sync.Mutex
	timer *clock.Timer
	state atomic.Int32

	// inFlight is the exclusive pass lease; overlapping wake-ups skip
	// instead of double-running.
	inFlight atomic.Bool

	logger logger.Logger
}

func NewScheduler(clk clock.Clock, market marketHours, orders orderSource, runner Runner,
	pollInterval, passTimeout time.Duration, logger logger.Logger) *Scheduler {
	return &Scheduler{
		clock:        clk,
		market:       market,
		orders:       orders,
		runner:       runner,
		pollInterval: pollInterval,
		passTimeout:  passTimeout,
		logger:       logger,
	}
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Schedule arms the next wake-up: poll cadence while quotes can still
// move (the session plus the post-close grace window, so closing
// prices settle into the snapshot ledger), otherwise a single wake-up
// at the next open.
func (s *Scheduler) Schedule() {
	delay := s.pollInterval
	if !s.market.IsInPollTime() {
		delay = s.market.NextMarketOpen().Sub(s.clock.Now())
		if delay < 0 {
			delay = s.pollInterval
		}
	}

	s.arm(delay)
}

// ScheduleIfNeeded arms a wake-up only when open orders exist;
// otherwise the scheduler goes idle and no alarm stays armed.
func (s *Scheduler) ScheduleIfNeeded(ctx context.Context) error {
	hasOpen, err := s.orders.HasOpenOrders(ctx)
	if err != nil {
		return err
	}

	if !hasOpen {
		s.disarm()
		return nil
	}

	s.Schedule()
	return nil
}

// ForceRun bypasses market-hours gating and fires immediately. Returns
// false when a pass is already in flight.
func (s *Scheduler) ForceRun() bool {
	return s.fire()
}

// Stop cancels any pending wake-up.
func (s *Scheduler) Stop() {
	s.disarm()
}

func (s *Scheduler) arm(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(delay, func() { s.fire() })
	s.state.Store(int32(Armed))

	s.logger.Debugf("scheduler armed, next wake-up in %s", delay)
}

func (s *Scheduler) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state.Store(int32(Idle))
}

func (s *Scheduler) fire() bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warnf("execution pass already in flight, skipping wake-up")
		return false
	}
	defer s.inFlight.Store(false)

	s.state.Store(int32(Firing))

	ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
	defer cancel()

	if err := s.runner.ExecutionPass(ctx); err != nil {
		s.logger.Errorf("%s: execution pass failed", err)
	}

	s.state.Store(int32(Idle))

	// the pass context may already be expired after a timeout; re-arm
	// with a fresh one so a timed-out pass can't leave open orders
	// unpolled
	rearmCtx, rearmCancel := context.WithTimeout(context.Background(), _rearmTimeout)
	defer rearmCancel()

	if err := s.ScheduleIfNeeded(rearmCtx); err != nil {
		s.logger.Errorf("%s: can't reschedule after pass", err)
	}
	return true
}
