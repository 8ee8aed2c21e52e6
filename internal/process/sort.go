package process

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// SortKey is a field the snapshot can be ordered by
type SortKey string

const (
	SortByPID    SortKey = "pid"
	SortByName   SortKey = "name"
	SortByStatus SortKey = "status"
	SortByMemory SortKey = "memory_percent"
)

// SortKeys lists the keys in column order
var SortKeys = []SortKey{SortByPID, SortByName, SortByStatus, SortByMemory}

// Direction is the sort direction
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// SortSpec is the active (key, direction) pair
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSortSpec orders by pid, ascending
func DefaultSortSpec() SortSpec {
	return SortSpec{Key: SortByPID, Direction: Ascending}
}

// Toggle selecting the active key flips the direction, a new key starts ascending
func (s SortSpec) Toggle(key SortKey) SortSpec {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortSpec{Key: key, Direction: Descending}
		}
		return SortSpec{Key: key, Direction: Ascending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Indicator returns the arrow shown next to the sorted column
func (s SortSpec) Indicator(key SortKey) string {
	if s.Key != key {
		return ""
	}
	if s.Direction == Descending {
		return " ↓"
	}
	return " ↑"
}

// ParseSortKey parses a sort key name
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pid":
		return SortByPID, nil
	case "name":
		return SortByName, nil
	case "status":
		return SortByStatus, nil
	case "memory_percent", "memory", "mem":
		return SortByMemory, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Order returns the snapshot's records ordered by spec. The snapshot is not
// modified. Equal keys fall back to pid ascending so the result only depends
// on the set of records.
func Order(s Snapshot, spec SortSpec) []Record {
	out := s.Records()

	sort.Slice(out, func(i, j int) bool {
		c := Compare(out[i], out[j], spec.Key)
		if spec.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return out[i].PID < out[j].PID
	})

	return out
}

// Compare is the ascending three-way comparison of a and b on key
func Compare(a, b Record, key SortKey) int {
	switch key {
	case SortByName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortByStatus:
		return strings.Compare(strings.ToLower(a.Status), strings.ToLower(b.Status))
	case SortByMemory:
		return cmp.Compare(a.Memory(), b.Memory())
	default:
		return cmp.Compare(a.PID, b.PID)
	}
}
