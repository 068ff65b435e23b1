// Package session runs the scan loop: it holds the per-profile results and the
// refresh state, and refreshes every profile when a cycle is due.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MomentumScanner/internal/collector"
	"MomentumScanner/internal/logger"
	"MomentumScanner/internal/metrics"
	"MomentumScanner/internal/model"
	"MomentumScanner/internal/normalizer"
	"MomentumScanner/internal/recorder"
	"MomentumScanner/internal/refresh"
)

// ErrCollectPanic marks a profile whose collection panicked. The panic is contained
// to that profile and the cycle still completes.
var ErrCollectPanic = errors.New("collect panicked")

// Config holds session settings.
type Config struct {
	Interval time.Duration
}

// ProfileView is a snapshot of one profile's latest state. Result is the most recent
// successful scan and survives later failures; Err is the most recent failure, cleared
// by the next success.
type ProfileView struct {
	Profile *model.ScanProfile
	Result  *model.ScanResult
	Err     error
	ErrAt   time.Time
}

type slot struct {
	profile *model.ScanProfile
	schema  *normalizer.Schema
	result  *model.ScanResult
	err     error
	errAt   time.Time
}

// Session owns the scan state of one running process.
type Session struct {
	scheduler refresh.Scheduler
	collector *collector.Collector
	recorder  recorder.Recorder

	// cycle is held for the whole of a cycle; a tick that cannot take it returns.
	cycle sync.Mutex

	mu    sync.RWMutex
	state model.RefreshState
	// requests counts RequestRefresh calls so a request made during a cycle
	// survives that cycle's completion.
	requests uint64
	slots    []*slot
	index    map[string]int
}

// New compiles a schema per profile and returns a session with no results yet.
// An invalid profile is a startup error.
func New(cfg Config, profiles []*model.ScanProfile, col *collector.Collector, rec recorder.Recorder) (*Session, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("session: no profiles")
	}
	if col == nil {
		return nil, fmt.Errorf("session: nil collector")
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	s := &Session{
		scheduler: refresh.New(cfg.Interval),
		collector: col,
		recorder:  rec,
		index:     make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		schema, err := normalizer.Compile(p)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, model.NewInvalidProfileError(p.Name, "duplicate profile name")
		}
		s.index[p.Name] = len(s.slots)
		s.slots = append(s.slots, &slot{profile: p, schema: schema})
	}
	return s, nil
}

// Interval returns the automatic refresh interval.
func (s *Session) Interval() time.Duration { return s.scheduler.Interval }

// RequestRefresh makes the next tick due regardless of the interval.
func (s *Session) RequestRefresh() {
	s.mu.Lock()
	s.state = s.scheduler.RequestManual(s.state)
	s.requests++
	s.mu.Unlock()
}

// State returns the current refresh state.
func (s *Session) State() model.RefreshState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// NextRefresh returns when the next automatic refresh is due. It is zero when the
// next tick refreshes: before the first cycle or with a manual refresh pending.
func (s *Session) NextRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ManualTrigger {
		return time.Time{}
	}
	return s.scheduler.NextDue(s.state)
}

// Tick evaluates the refresh state at now and runs a cycle when due. It reports
// whether a cycle ran. Ticks are not re-entrant: a tick arriving while a cycle is in
// progress returns false immediately.
func (s *Session) Tick(ctx context.Context, now time.Time) bool {
	if !s.cycle.TryLock() {
		return false
	}
	defer s.cycle.Unlock()

	s.mu.RLock()
	state, seen := s.state, s.requests
	s.mu.RUnlock()
	if s.scheduler.Evaluate(state, now) != refresh.Due {
		return false
	}

	trigger := metrics.TriggerInterval
	if state.ManualTrigger {
		trigger = metrics.TriggerManual
	}
	// A started cycle runs to completion; only the transport timeout bounds it.
	s.runCycle(context.WithoutCancel(ctx), now, trigger, seen)
	return true
}

func (s *Session) runCycle(ctx context.Context, startedAt time.Time, trigger string, seen uint64) {
	cycleID := uuid.NewString()
	log := logger.Get().With(zap.String("cycle_id", cycleID))
	log.Info("refresh cycle started", zap.String("trigger", trigger))
	metrics.RefreshCycles.WithLabelValues(trigger).Inc()

	failed := 0
	for _, sl := range s.slots {
		if !s.refreshProfile(ctx, cycleID, log, sl) {
			failed++
		}
	}

	s.mu.Lock()
	s.state = s.scheduler.Complete(s.state, startedAt)
	if s.requests != seen {
		// Requested after this cycle began; some profiles may predate the request.
		s.state = s.scheduler.RequestManual(s.state)
	}
	s.mu.Unlock()

	log.Info("refresh cycle finished",
		zap.Int("profiles", len(s.slots)),
		zap.Int("failed", failed),
	)
}

// refreshProfile fetches one profile. Every failure stops here so the remaining
// profiles still refresh.
func (s *Session) refreshProfile(ctx context.Context, cycleID string, log *zap.Logger, sl *slot) bool {
	start := time.Now()
	result, err := s.collect(ctx, log, sl)
	took := time.Since(start)

	evt := &recorder.CycleEvent{
		CycleID:   cycleID,
		Profile:   sl.profile.Name,
		Timestamp: start,
		Duration:  took,
	}

	s.mu.Lock()
	if err != nil {
		sl.err = err
		sl.errAt = start
	} else {
		sl.result = result
		sl.err = nil
		sl.errAt = time.Time{}
	}
	s.mu.Unlock()

	if err != nil {
		evt.Outcome = recorder.OutcomeError
		evt.ErrorKind = string(collector.KindOf(err))
		evt.Error = err.Error()
		log.Warn("profile refresh failed",
			zap.String("profile", sl.profile.Name),
			zap.String("kind", evt.ErrorKind),
			zap.Error(err),
		)
	} else {
		evt.Outcome = recorder.OutcomeOK
		evt.Records = result.Len()
		evt.Dropped = result.Dropped
		log.Info("profile refreshed",
			zap.String("profile", sl.profile.Name),
			zap.Int("records", result.Len()),
			zap.Int("dropped", result.Dropped),
			zap.Duration("took", took),
		)
	}

	if rerr := s.recorder.RecordCycle(evt); rerr != nil {
		log.Error("record cycle", zap.String("profile", sl.profile.Name), zap.Error(rerr))
	}
	return err == nil
}

func (s *Session) collect(ctx context.Context, log *zap.Logger, sl *slot) (result *model.ScanResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("profile collect panicked",
				zap.String("profile", sl.profile.Name),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			result, err = nil, fmt.Errorf("%w: %v", ErrCollectPanic, r)
		}
	}()
	return s.collector.Collect(ctx, sl.profile, sl.schema)
}

// View returns a snapshot of the named profile.
func (s *Session) View(name string) (ProfileView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return ProfileView{}, false
	}
	return s.slots[i].view(), true
}

// Views returns snapshots of every profile in configuration order.
func (s *Session) Views() []ProfileView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProfileView, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.view()
	}
	return out
}

func (sl *slot) view() ProfileView {
	return ProfileView{Profile: sl.profile, Result: sl.result, Err: sl.err, ErrAt: sl.errAt}
}
