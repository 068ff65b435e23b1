package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"MomentumScanner/internal/collector"
	"MomentumScanner/internal/logger"
	"MomentumScanner/internal/profile"
	"MomentumScanner/internal/recorder"
	"MomentumScanner/internal/session"
)

var t0 = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

const marketBody = `{"totalCount":1,"data":[
	{"s":"NASDAQ:ABCD","d":["ABCD","Abcd Inc",12.5,18.2,25000000,7.1,150000000,"Technology","NASDAQ"]}
]}`

func newTestScheduler(t *testing.T, m *collector.MockFetcher) *Scheduler {
	t.Helper()
	col := collector.NewCollector(m)
	col.Now = func() time.Time { return t0 }
	sess, err := session.New(session.Config{Interval: time.Minute}, profile.All(""), col, nil)
	require.NoError(t, err)

	s := NewScheduler(context.Background(), sess)
	s.Now = func() time.Time { return t0 }
	return s
}

func TestNormalizeCommand(t *testing.T) {
	tests := map[string]string{
		"/market":             "/market",
		"  /PreMarket  ":      "/premarket",
		"/status@MomentumBot": "/status",
		"/refresh now please": "/refresh",
		"":                    "",
		"hello":               "hello",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeCommand(in), in)
	}
}

func TestHandleCommand_BeforeFirstCycle(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{})

	assert.Contains(t, s.HandleCommand("/market"), "No results yet")
	assert.Contains(t, s.HandleCommand("/status"), "never")
	assert.Contains(t, s.HandleCommand("/unknown"), "/premarket")
}

func TestHandleCommand_AfterCycle(t *testing.T) {
	m := &collector.MockFetcher{}
	m.SetBody(profile.MarketHoursName, []byte(marketBody))
	m.SetError(profile.PreMarketName, context.DeadlineExceeded)
	s := newTestScheduler(t, m)

	s.RunNow()

	market := s.HandleCommand("/market")
	assert.Contains(t, market, "Market Hours Scanner")
	assert.Contains(t, market, "ABCD")

	pre := s.HandleCommand("/premarket@Bot")
	assert.Contains(t, pre, "TIMEOUT")
	assert.Contains(t, pre, "No results yet")

	status := s.HandleCommand("/status")
	assert.Contains(t, status, "1 records")
	assert.Contains(t, status, "TIMEOUT")
}

func TestHandleCommand_Refresh(t *testing.T) {
	m := &collector.MockFetcher{}
	s := newTestScheduler(t, m)

	s.RunNow()
	require.Len(t, m.Requests(), 2)

	s.tick()
	assert.Len(t, m.Requests(), 2, "interval has not elapsed")

	assert.Contains(t, s.HandleCommand("/refresh"), "Refresh requested")
	assert.True(t, s.Session.State().ManualTrigger)

	s.tick()
	assert.Len(t, m.Requests(), 4)
	assert.False(t, s.Session.State().ManualTrigger)
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{})
	require.NoError(t, s.Register(""))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.Register("every so often"))
}

func TestStartStop_TicksSession(t *testing.T) {
	m := &collector.MockFetcher{}
	s := newTestScheduler(t, m)
	s.Now = time.Now
	require.NoError(t, s.Register("@every 1s"))

	s.Start()
	require.Eventually(t, func() bool { return len(m.Requests()) >= 2 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

type fakeJournal struct {
	since time.Time
}

func (f *fakeJournal) Summary(since time.Time) ([]recorder.CycleSummary, error) {
	f.since = since
	return []recorder.CycleSummary{{Profile: "premarket", Cycles: 3, Failures: 1}}, nil
}

func TestHandleCommand_StatusIncludesJournal(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{})
	j := &fakeJournal{}
	s.Journal = j

	out := s.HandleCommand("/status")
	assert.Contains(t, out, "premarket: 3 cycles, 1 failed")
	assert.Equal(t, t0.Add(-24*time.Hour), j.since)
}

func TestTick_LogsTablesAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	m := &collector.MockFetcher{}
	m.SetBody(profile.MarketHoursName, []byte(marketBody))
	s := newTestScheduler(t, m)
	s.RunNow()

	tables := logs.FilterMessage("scan table").All()
	require.Len(t, tables, 2)
	fields := tables[0].ContextMap()
	assert.Equal(t, profile.MarketHoursName, fields["profile"])
	assert.Contains(t, fields["table"], "ABCD")
	assert.Contains(t, fields["table"], "$12.50")
	assert.Equal(t, profile.PreMarketName, tables[1].ContextMap()["profile"])

	s.tick()
	assert.Len(t, logs.FilterMessage("scan table").All(), 2, "idle tick logs nothing")
}

func TestTick_NoTablesAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	m := &collector.MockFetcher{}
	m.SetBody(profile.MarketHoursName, []byte(marketBody))
	newTestScheduler(t, m).RunNow()

	assert.Empty(t, logs.FilterMessage("scan table").All())
	assert.NotEmpty(t, logs.FilterMessage("refresh cycle finished").All())
}

func TestHandleCommand_StatusShowsNextRefresh(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{})
	assert.Contains(t, s.HandleCommand("/status"), "Next refresh: now")

	s.RunNow()
	s.Now = func() time.Time { return t0.Add(15 * time.Second) }
	assert.Contains(t, s.HandleCommand("/status"), "Next refresh: 14:31:00 UTC (45 seconds from now)")

	s.HandleCommand("/refresh")
	assert.Contains(t, s.HandleCommand("/status"), "manual refresh pending")
}
