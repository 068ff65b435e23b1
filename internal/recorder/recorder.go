package recorder

import "time"

// Cycle outcomes.
const (
	OutcomeOK    = "OK"
	OutcomeError = "ERROR"
)

// CycleEvent is the outcome of one profile within one refresh cycle. Scan rows are
// never journaled.
type CycleEvent struct {
	CycleID   string
	Profile   string
	Timestamp time.Time
	Outcome   string // OutcomeOK or OutcomeError
	ErrorKind string // fetch error kind, "" on success
	Error     string
	Records   int
	Dropped   int
	Duration  time.Duration
}

// Recorder journals refresh cycle outcomes for later analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	Close() error
}

// Summarizer is implemented by recorders that can aggregate their journal.
type Summarizer interface {
	Summary(since time.Time) ([]CycleSummary, error)
}
