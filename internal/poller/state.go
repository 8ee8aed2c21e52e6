package poller

import (
	"sync"
	"time"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// Status is a point-in-time copy of the poll state
type Status struct {
	Snapshot  process.Snapshot
	Loading   bool
	Err       error
	UpdatedAt time.Time
	Cycles    uint64
}

// State holds the latest published poll outcome of one dashboard.
// The scheduler is its only writer.
type State struct {
	mu        sync.RWMutex
	snapshot  process.Snapshot
	loading   bool
	lastErr   error
	updatedAt time.Time
	cycles    uint64
}

// NewState creates a state that is loading until the first outcome
func NewState() *State {
	return &State{loading: true}
}

// Status returns a copy of the current state
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Snapshot:  s.snapshot,
		Loading:   s.loading,
		Err:       s.lastErr,
		UpdatedAt: s.updatedAt,
		Cycles:    s.cycles,
	}
}

// Snapshot returns the latest successfully fetched snapshot
func (s *State) Snapshot() process.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Err returns the error of the latest cycle, nil if it succeeded
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Loading reports whether no cycle has completed yet
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// publish records one cycle outcome. A failure keeps the previous snapshot.
func (s *State) publish(snap process.Snapshot, err error, at time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.snapshot = snap
	}
	s.lastErr = err
	s.loading = false
	s.updatedAt = at
	s.cycles++

	return Status{
		Snapshot:  s.snapshot,
		Loading:   s.loading,
		Err:       s.lastErr,
		UpdatedAt: s.updatedAt,
		Cycles:    s.cycles,
	}
}
