// Package scheduler drives the scan session from a cron ticker and answers chat
// commands against the session's latest results.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"MomentumScanner/internal/logger"
	"MomentumScanner/internal/notifier"
	"MomentumScanner/internal/profile"
	"MomentumScanner/internal/recorder"
	"MomentumScanner/internal/session"
)

// DefaultTick is how often the refresh state is evaluated.
const DefaultTick = "@every 1s"

// Scheduler manages the cron tick that drives the session.
type Scheduler struct {
	Cron     *cron.Cron
	Session  *session.Session
	Ctx      context.Context
	RowLimit int
	Now      func() time.Time
	// Journal, when set, adds 24h cycle totals to /status.
	Journal recorder.Summarizer
}

// NewScheduler creates a new Scheduler. Overlapping ticks are skipped while a cycle runs.
func NewScheduler(ctx context.Context, sess *session.Session) *Scheduler {
	cl := cronLogger{log: logger.Get().Named("cron")}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Session:  sess,
		Ctx:      ctx,
		RowLimit: notifier.DefaultRowLimit,
		Now:      time.Now,
	}
}

// Register adds the evaluation tick. tickSpec accepts any robfig/cron spec,
// including "@every 1s".
func (s *Scheduler) Register(tickSpec string) error {
	if tickSpec == "" {
		tickSpec = DefaultTick
	}
	if _, err := s.Cron.AddFunc(tickSpec, s.tick); err != nil {
		return fmt.Errorf("register refresh tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started", zap.Duration("interval", s.Session.Interval()))
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow evaluates the session synchronously; before the first cycle this always
// fetches (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.tick()
}

func (s *Scheduler) tick() {
	if s.Session.Tick(s.Ctx, s.Now()) {
		s.logTables()
	}
}

// logTables writes each profile's current table to the log at debug level.
func (s *Scheduler) logTables() {
	log := logger.Get()
	if !log.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	for _, v := range s.Session.Views() {
		if v.Result == nil {
			continue
		}
		log.Debug("scan table",
			zap.String("profile", v.Profile.Name),
			zap.Int("records", v.Result.Len()),
			zap.String("table", notifier.FormatTable(v.Result.Records, s.RowLimit)),
		)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch normalizeCommand(command) {
	case "/market":
		return s.profileReply(profile.MarketHoursName)
	case "/premarket":
		return s.profileReply(profile.PreMarketName)
	case "/status":
		return s.statusReply()
	case "/refresh":
		s.Session.RequestRefresh()
		return "🔄 Refresh requested. Results update on the next tick."
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) statusReply() string {
	now := s.Now()
	reply := notifier.FormatStatus(s.Session.Views(), s.Session.State(), s.Session.Interval(), s.Session.NextRefresh(), now)
	if s.Journal == nil {
		return reply
	}
	sums, err := s.Journal.Summary(now.Add(-24 * time.Hour))
	if err != nil {
		logger.Warn("journal summary", zap.Error(err))
		return reply
	}
	return reply + "\n" + notifier.FormatJournal(sums)
}

func (s *Scheduler) profileReply(name string) string {
	v, ok := s.Session.View(name)
	if !ok {
		return fmt.Sprintf("Profile %s is not enabled.", name)
	}
	return notifier.FormatProfile(v, s.RowLimit)
}

// normalizeCommand lowercases a command and strips a "@BotName" suffix and arguments.
func normalizeCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
