package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// DefaultInterval is the quiet time between the end of one cycle and the start of the next
const DefaultInterval = 2 * time.Second

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrStopped        = errors.New("scheduler stopped")
)

// Fetcher reads one full snapshot
type Fetcher interface {
	Fetch(ctx context.Context) (process.Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context) (process.Snapshot, error)

func (f FetcherFunc) Fetch(ctx context.Context) (process.Snapshot, error) {
	return f(ctx)
}

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseStopped
)

// Scheduler drives a completion-gated poll loop: the next fetch is scheduled
// only after the previous outcome has been published, so fetches never overlap.
type Scheduler struct {
	fetcher   Fetcher
	state     *State
	interval  time.Duration
	timeout   time.Duration
	onPublish func(Status)
	now       func() time.Time

	mu       sync.Mutex
	phase    phase
	timer    *time.Timer
	inFlight bool
	pending  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRequestTimeout bounds every fetch; zero disables the bound
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// WithOnPublish registers a callback run after every published outcome.
// The callback must not call Stop.
func WithOnPublish(fn func(Status)) Option {
	return func(s *Scheduler) {
		s.onPublish = fn
	}
}

// WithClock replaces the clock used to stamp outcomes
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates an idle scheduler publishing into state
func NewScheduler(fetcher Fetcher, state *State, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		fetcher:  fetcher,
		state:    state,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the first cycle immediately and keeps polling until Stop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case phaseRunning:
		return ErrAlreadyStarted
	case phaseStopped:
		return ErrStopped
	}

	s.phase = phaseRunning
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.launchLocked()
	return nil
}

// Stop ends the loop. A pending cycle is cancelled, an in-flight fetch is
// aborted and its outcome discarded. When Stop returns no cycle is running
// and nothing more will be published. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.phase != phaseStopped {
		s.phase = phaseStopped
		if s.timer != nil {
			if s.timer.Stop() {
				s.wg.Done()
			}
			s.timer = nil
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.pending = false
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Refresh asks for a cycle now instead of after the interval. If a fetch is in
// flight the extra cycle starts as soon as it completes. It reports false when
// the scheduler is not running.
func (s *Scheduler) Refresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseRunning {
		return false
	}
	if s.inFlight {
		s.pending = true
		return true
	}
	if s.timer != nil && s.timer.Stop() {
		// the timer's claim on wg moves to the cycle
		s.timer = nil
		s.inFlight = true
		go s.cycle(s.ctx)
	}
	// otherwise the timer has fired and its cycle is about to start
	return true
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseRunning
}

// launchLocked starts a cycle now. Caller holds s.mu.
func (s *Scheduler) launchLocked() {
	s.inFlight = true
	s.wg.Add(1)
	go s.cycle(s.ctx)
}

// scheduleLocked arms the timer for the next cycle. Caller holds s.mu.
func (s *Scheduler) scheduleLocked(delay time.Duration) {
	s.wg.Add(1)
	s.timer = time.AfterFunc(delay, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.phase != phaseRunning || s.inFlight {
		s.mu.Unlock()
		s.wg.Done()
		return
	}
	s.timer = nil
	s.inFlight = true
	ctx := s.ctx
	s.mu.Unlock()

	s.cycle(ctx)
}

func (s *Scheduler) cycle(ctx context.Context) {
	defer s.wg.Done()

	fctx, cancel := ctx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	snap, err := s.fetcher.Fetch(fctx)
	cancel()

	s.mu.Lock()
	s.inFlight = false
	if s.phase != phaseRunning {
		// torn down while fetching, drop the outcome
		s.mu.Unlock()
		return
	}

	status := s.state.publish(snap, err, s.now())

	delay := s.interval
	if s.pending {
		s.pending = false
		delay = 0
	}
	s.scheduleLocked(delay)
	s.mu.Unlock()

	if s.onPublish != nil {
		s.onPublish(status)
	}
}
