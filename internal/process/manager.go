package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Manager reads and controls processes of the local host
type Manager struct {
	// ProtectedPIDs can never be terminated, suspended or resumed
	ProtectedPIDs map[int32]bool

	// ForceKill makes Terminate send SIGKILL instead of SIGTERM
	ForceKill bool
}

// NewManager creates a manager that protects init, itself and any extra pids
func NewManager(forceKill bool, protected ...int32) *Manager {
	m := &Manager{
		ProtectedPIDs: map[int32]bool{
			1:                  true,
			int32(os.Getpid()): true,
		},
		ForceKill: forceKill,
	}
	for _, pid := range protected {
		m.ProtectedPIDs[pid] = true
	}
	return m
}

// List returns a snapshot of every process that could be read
func (m *Manager) List(ctx context.Context) (Snapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get processes: %w", err)
	}

	records := make([]Record, 0, len(procs))
	for _, p := range procs {
		rec, err := m.record(ctx, p)
		if err != nil {
			// exited or not readable
			continue
		}
		records = append(records, rec)
	}

	return NewSnapshot(records, time.Now())
}

// Get returns the record of a single process
func (m *Manager) Get(ctx context.Context, pid int32) (Record, error) {
	p, err := m.lookup(ctx, pid)
	if err != nil {
		return Record{}, err
	}
	rec, err := m.record(ctx, p)
	if err != nil {
		return Record{}, mapError(pid, err)
	}
	return rec, nil
}

// Terminate stops the process with SIGTERM, or SIGKILL when ForceKill is set
func (m *Manager) Terminate(ctx context.Context, pid int32) error {
	p, err := m.control(ctx, pid)
	if err != nil {
		return err
	}
	if m.ForceKill {
		return mapError(pid, p.KillWithContext(ctx))
	}
	return mapError(pid, p.TerminateWithContext(ctx))
}

// Suspend pauses the process
func (m *Manager) Suspend(ctx context.Context, pid int32) error {
	p, err := m.control(ctx, pid)
	if err != nil {
		return err
	}
	return mapError(pid, p.SuspendWithContext(ctx))
}

// Resume continues a suspended process
func (m *Manager) Resume(ctx context.Context, pid int32) error {
	p, err := m.control(ctx, pid)
	if err != nil {
		return err
	}
	return mapError(pid, p.ResumeWithContext(ctx))
}

// Apply runs action against pid
func (m *Manager) Apply(ctx context.Context, pid int32, action Action) error {
	switch action {
	case ActionTerminate:
		return m.Terminate(ctx, pid)
	case ActionSuspend:
		return m.Suspend(ctx, pid)
	case ActionResume:
		return m.Resume(ctx, pid)
	}
	return fmt.Errorf("unknown action %q", action)
}

// IsProtected checks if pid is on the protected list
func (m *Manager) IsProtected(pid int32) bool {
	return m.ProtectedPIDs[pid]
}

func (m *Manager) control(ctx context.Context, pid int32) (*process.Process, error) {
	if m.IsProtected(pid) {
		return nil, fmt.Errorf("%w: %d", ErrProtected, pid)
	}
	return m.lookup(ctx, pid)
}

func (m *Manager) lookup(ctx context.Context, pid int32) (*process.Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, mapError(pid, err)
	}
	return p, nil
}

func (m *Manager) record(ctx context.Context, p *process.Process) (Record, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		PID:    p.Pid,
		Name:   name,
		Status: StatusUnknown,
	}

	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		rec.Status = NormalizeStatus(status[0])
	}
	if mem, err := p.MemoryPercentWithContext(ctx); err == nil {
		v := float64(mem)
		rec.MemoryPercent = &v
	}

	return rec, nil
}

func mapError(pid int32, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, os.ErrProcessDone),
		errors.Is(err, syscall.ESRCH):
		return fmt.Errorf("%w: %d", ErrNotFound, pid)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w for process %d", ErrPermission, pid)
	}
	return fmt.Errorf("process %d: %w", pid, err)
}
