// Package refresh decides when a scan cycle is due. It performs no I/O and reads no
// clock; callers pass the current time in.
package refresh

import (
	"time"

	"MomentumScanner/internal/model"
)

// DefaultInterval is the time between automatic refreshes.
const DefaultInterval = 60 * time.Second

// Status is the outcome of one evaluation.
type Status int

const (
	Idle Status = iota
	Due
)

func (s Status) String() string {
	if s == Due {
		return "due"
	}
	return "idle"
}

// Scheduler evaluates refresh state against a fixed interval.
type Scheduler struct {
	Interval time.Duration
}

// New returns a Scheduler; a non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Scheduler{Interval: interval}
}

// Evaluate reports Due when a manual refresh is pending, nothing has been fetched
// yet, or at least Interval has passed since the last refresh.
func (s Scheduler) Evaluate(state model.RefreshState, now time.Time) Status {
	switch {
	case state.ManualTrigger:
		return Due
	case state.LastRefresh.IsZero():
		return Due
	case now.Sub(state.LastRefresh) >= s.Interval:
		return Due
	default:
		return Idle
	}
}

// Complete returns the state after a cycle that started at at.
func (s Scheduler) Complete(_ model.RefreshState, at time.Time) model.RefreshState {
	return model.RefreshState{LastRefresh: at, ManualTrigger: false}
}

// RequestManual returns state with the manual trigger set.
func (s Scheduler) RequestManual(state model.RefreshState) model.RefreshState {
	state.ManualTrigger = true
	return state
}

// NextDue returns when the state becomes due without a manual trigger.
func (s Scheduler) NextDue(state model.RefreshState) time.Time {
	if state.LastRefresh.IsZero() {
		return time.Time{}
	}
	return state.LastRefresh.Add(s.Interval)
}
