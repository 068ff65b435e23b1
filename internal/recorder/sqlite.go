package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MomentumScanner/internal/logger"
)

// SQLiteRecorder persists cycle outcomes to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the scanner writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycle_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			profile     TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			outcome     TEXT NOT NULL,
			error_kind  TEXT,
			error       TEXT,
			records     INTEGER,
			dropped     INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_profile ON cycle_events(profile, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO cycle_events
		(cycle_id, profile, timestamp, outcome, error_kind, error, records, dropped, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.CycleID, evt.Profile, ts.Unix(), evt.Outcome,
		evt.ErrorKind, evt.Error, evt.Records, evt.Dropped,
		evt.Duration.Milliseconds(),
	)
	return err
}

// CycleSummary aggregates the journal for one profile.
type CycleSummary struct {
	Profile  string
	Cycles   int
	Failures int
	LastOK   time.Time
}

// Summary returns per-profile totals since the given time, ordered by profile.
func (r *SQLiteRecorder) Summary(since time.Time) ([]CycleSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT profile,
			COUNT(*),
			SUM(CASE WHEN outcome = ? THEN 0 ELSE 1 END),
			COALESCE(MAX(CASE WHEN outcome = ? THEN timestamp END), 0)
		FROM cycle_events
		WHERE timestamp >= ?
		GROUP BY profile
		ORDER BY profile`, OutcomeOK, OutcomeOK, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var s CycleSummary
		var lastOK int64
		if err := rows.Scan(&s.Profile, &s.Cycles, &s.Failures, &lastOK); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if lastOK > 0 {
			s.LastOK = time.Unix(lastOK, 0)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
