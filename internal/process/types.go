package process

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("process not found")
	ErrPermission    = errors.New("permission denied")
	ErrProtected     = errors.New("process is protected")
	ErrInvalidPID    = errors.New("invalid pid")
	ErrDuplicatePID  = errors.New("duplicate pid")
	ErrInvalidMemory = errors.New("invalid memory percent")
)

// Record is one row of a process snapshot
type Record struct {
	PID           int32    `json:"pid"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	MemoryPercent *float64 `json:"memory_percent"`
}

// Memory returns the memory percent used for ordering, 0 when not reported
func (r Record) Memory() float64 {
	if r.MemoryPercent == nil {
		return 0
	}
	return *r.MemoryPercent
}

// Snapshot is one complete, immutable read of the process table.
// Records are unique by PID.
type Snapshot struct {
	records   []Record
	index     map[int32]int
	fetchedAt time.Time
}

// NewSnapshot validates records and returns a snapshot holding its own copy of them
func NewSnapshot(records []Record, fetchedAt time.Time) (Snapshot, error) {
	owned := make([]Record, len(records))
	index := make(map[int32]int, len(records))

	for i, r := range records {
		if r.PID <= 0 {
			return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidPID, r.PID)
		}
		if _, dup := index[r.PID]; dup {
			return Snapshot{}, fmt.Errorf("%w: %d", ErrDuplicatePID, r.PID)
		}
		if r.MemoryPercent != nil {
			m := *r.MemoryPercent
			if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
				return Snapshot{}, fmt.Errorf("%w for pid %d: %v", ErrInvalidMemory, r.PID, m)
			}
			// the pointer must not alias caller memory
			v := m
			r.MemoryPercent = &v
		}
		owned[i] = r
		index[r.PID] = i
	}

	return Snapshot{records: owned, index: index, fetchedAt: fetchedAt}, nil
}

// Len returns the number of records
func (s Snapshot) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in their original order
func (s Snapshot) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Lookup returns the record for pid
func (s Snapshot) Lookup(pid int32) (Record, bool) {
	i, ok := s.index[pid]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// FetchedAt returns when the snapshot was read
func (s Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// Status values shown by the dashboard
const (
	StatusRunning   = "running"
	StatusSleeping  = "sleeping"
	StatusIdle      = "idle"
	StatusDiskSleep = "disk-sleep"
	StatusStopped   = "stopped"
	StatusZombie    = "zombie"
	StatusDead      = "dead"
	StatusUnknown   = "unknown"
)

// NormalizeStatus maps OS status spellings onto the dashboard vocabulary
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running", "r", "run":
		return StatusRunning
	case "sleeping", "sleep", "s", "wait", "waiting", "lock", "locked":
		return StatusSleeping
	case "idle", "i":
		return StatusIdle
	case "disk-sleep", "disk sleep", "d":
		return StatusDiskSleep
	case "stopped", "stop", "t", "tracing-stop", "tracing stop":
		return StatusStopped
	case "zombie", "z":
		return StatusZombie
	case "dead", "x":
		return StatusDead
	default:
		return StatusUnknown
	}
}

// FormatMemory renders a memory percent, using N/A when it was not reported
func FormatMemory(m *float64) string {
	if m == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *m)
}

// Action is an operator-issued control command
type Action string

const (
	ActionTerminate Action = "terminate"
	ActionSuspend   Action = "suspend"
	ActionResume    Action = "resume"
)

// Endpoint returns the directory path segment for the action
func (a Action) Endpoint() string {
	switch a {
	case ActionTerminate:
		return "kill"
	case ActionSuspend:
		return "suspend"
	case ActionResume:
		return "resume"
	}
	return ""
}

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	return a.Endpoint() != ""
}

// ParseAction parses an action name, accepting common synonyms
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "terminate", "kill":
		return ActionTerminate, nil
	case "suspend", "pause", "stop":
		return ActionSuspend, nil
	case "resume", "continue", "cont":
		return ActionResume, nil
	}
	return "", fmt.Errorf("unknown action %q (want terminate, suspend or resume)", s)
}

// ActionResponse is returned by the directory after a successful action
type ActionResponse struct {
	PID     int32  `json:"pid"`
	Action  Action `json:"action"`
	Message string `json:"message"`
}
