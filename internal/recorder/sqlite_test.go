package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RecordAndSummarize(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	events := []*CycleEvent{
		{CycleID: "c1", Profile: "market_hours", Timestamp: base, Outcome: OutcomeOK, Records: 12, Duration: 420 * time.Millisecond},
		{CycleID: "c1", Profile: "premarket", Timestamp: base, Outcome: OutcomeError, ErrorKind: "TIMEOUT", Error: "deadline exceeded"},
		{CycleID: "c2", Profile: "market_hours", Timestamp: base.Add(time.Minute), Outcome: OutcomeOK, Records: 11, Dropped: 1},
		{CycleID: "c2", Profile: "premarket", Timestamp: base.Add(time.Minute), Outcome: OutcomeOK, Records: 3},
	}
	for _, e := range events {
		require.NoError(t, r.RecordCycle(e))
	}

	sum, err := r.Summary(base)
	require.NoError(t, err)
	require.Len(t, sum, 2)

	assert.Equal(t, "market_hours", sum[0].Profile)
	assert.Equal(t, 2, sum[0].Cycles)
	assert.Zero(t, sum[0].Failures)
	assert.Equal(t, base.Add(time.Minute).Unix(), sum[0].LastOK.Unix())

	assert.Equal(t, "premarket", sum[1].Profile)
	assert.Equal(t, 2, sum[1].Cycles)
	assert.Equal(t, 1, sum[1].Failures)
}

func TestSQLiteRecorder_SummarySince(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordCycle(&CycleEvent{CycleID: "old", Profile: "premarket", Timestamp: base, Outcome: OutcomeOK}))

	sum, err := r.Summary(base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, sum)
}

func TestSQLiteRecorder_ReopenKeepsJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordCycle(&CycleEvent{CycleID: "c1", Profile: "premarket", Outcome: OutcomeOK}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	sum, err := r.Summary(time.Time{})
	require.NoError(t, err)
	require.Len(t, sum, 1)
	assert.Equal(t, 1, sum[0].Cycles)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCycle(&CycleEvent{Outcome: OutcomeError, Error: errors.New("x").Error()}))
	assert.NoError(t, r.Close())
}
