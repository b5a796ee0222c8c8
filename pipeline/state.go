package pipeline

import (
	"fmt"
	"sync/atomic"
)

// State is the lifecycle state of a single run.
type State int32

const (
	// Pending means the run has not settled yet.
	Pending State = iota
	// Cancelled means the signal was set (or the parent context was
	// cancelled) before a stage could start.
	Cancelled
	// Completed means every stage succeeded.
	Completed
	// Failed means a stage returned an error.
	Failed
	// TimedOut means the timeout elapsed before the run settled.
	TimedOut
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is a final state.
func (s State) IsTerminal() bool {
	return s != Pending
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for c := Pending; c <= TimedOut; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("pipeline: unknown state %q", b)
}

// stateCell holds a run's state. It leaves Pending at most once.
type stateCell struct {
	v atomic.Int32
}

func (c *stateCell) load() State {
	return State(c.v.Load())
}

// settle moves the cell from Pending to s. Only the first caller wins.
func (c *stateCell) settle(s State) bool {
	return c.v.CompareAndSwap(int32(Pending), int32(s))
}
