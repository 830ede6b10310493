package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"analytica-hq/meridian/pkg/underwriting"
)

// SQLiteConfig configures the SQLite decision log.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is the wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default decision log configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/decisions.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const decisionSchema = `
CREATE TABLE IF NOT EXISTS decisions (
	id              TEXT PRIMARY KEY,
	case_id         TEXT NOT NULL,
	run_id          TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	reason          TEXT NOT NULL,
	score           REAL NOT NULL,
	contribution    TEXT NOT NULL,
	violations      TEXT NOT NULL DEFAULT '[]',
	reasoner        TEXT NOT NULL,
	decided_by      TEXT NOT NULL,
	override_reason TEXT NOT NULL DEFAULT '',
	decided_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_case ON decisions(case_id, decided_at);
`

// SQLiteLog implements Log on SQLite. Rows are insert-only; there is no
// UPDATE or DELETE path in this package.
type SQLiteLog struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	insert  *sql.Stmt
	latest  *sql.Stmt
	history *sql.Stmt
}

// NewSQLiteLog opens the database and applies the schema.
func NewSQLiteLog(config *SQLiteConfig, logger *slog.Logger) (*SQLiteLog, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open decision log %q: %w", config.Path, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	l := &SQLiteLog{
		db:     db,
		config: config,
		logger: logger.With("component", "audit"),
	}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	l.logger.Info("decision log initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return l, nil
}

func (l *SQLiteLog) initialize() error {
	if l.config.WALMode {
		if _, err := l.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := l.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", l.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := l.db.Exec(decisionSchema); err != nil {
		return fmt.Errorf("failed to create decision log schema: %w", err)
	}

	var err error
	if l.insert, err = l.db.Prepare(`
		INSERT INTO decisions (id, case_id, run_id, status, reason, score, contribution,
			violations, reasoner, decided_by, override_reason, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	if l.latest, err = l.db.Prepare(selectDecision + `
		WHERE case_id = ? ORDER BY decided_at DESC, rowid DESC LIMIT 1`); err != nil {
		return fmt.Errorf("failed to prepare latest: %w", err)
	}
	if l.history, err = l.db.Prepare(selectDecision + `
		WHERE case_id = ? ORDER BY decided_at ASC, rowid ASC`); err != nil {
		return fmt.Errorf("failed to prepare history: %w", err)
	}
	return nil
}

const selectDecision = `
	SELECT id, case_id, run_id, status, reason, score, contribution,
		violations, reasoner, decided_by, override_reason, decided_at
	FROM decisions`

// Append durably inserts one decision record. The write is synchronous:
// when Append returns nil the record is on disk.
func (l *SQLiteLog) Append(ctx context.Context, d *underwriting.Decision) error {
	if d.ID == "" || d.CaseID == "" {
		return fmt.Errorf("decision requires id and case_id")
	}
	contribution, err := json.Marshal(d.Contribution)
	if err != nil {
		return fmt.Errorf("failed to marshal contribution: %w", err)
	}
	violations, err := json.Marshal(d.Violations)
	if err != nil {
		return fmt.Errorf("failed to marshal violations: %w", err)
	}
	reasoner, err := json.Marshal(d.Reasoner)
	if err != nil {
		return fmt.Errorf("failed to marshal reasoner opinion: %w", err)
	}

	_, err = l.insert.ExecContext(ctx,
		d.ID, d.CaseID, d.RunID, string(d.Status), d.Reason, d.Score,
		string(contribution), string(violations), string(reasoner),
		d.DecidedBy, d.OverrideReason, d.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append decision %s: %w", d.ID, err)
	}
	return nil
}

// Latest returns the newest record for the case.
func (l *SQLiteLog) Latest(ctx context.Context, caseID string) (*underwriting.Decision, error) {
	d, err := scanDecision(l.latest.QueryRowContext(ctx, caseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoDecision, caseID)
	}
	return d, err
}

// History returns all records for the case, oldest first.
func (l *SQLiteLog) History(ctx context.Context, caseID string) ([]*underwriting.Decision, error) {
	rows, err := l.history.QueryContext(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision history for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var out []*underwriting.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close releases prepared statements and the connection pool.
func (l *SQLiteLog) Close() error {
	for _, stmt := range []*sql.Stmt{l.insert, l.latest, l.history} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return l.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*underwriting.Decision, error) {
	var (
		d            underwriting.Decision
		status       string
		contribution string
		violations   string
		reasoner     string
	)
	err := row.Scan(&d.ID, &d.CaseID, &d.RunID, &status, &d.Reason, &d.Score,
		&contribution, &violations, &reasoner, &d.DecidedBy, &d.OverrideReason, &d.DecidedAt)
	if err != nil {
		return nil, err
	}
	d.Status = underwriting.DecisionStatus(status)
	if err := json.Unmarshal([]byte(contribution), &d.Contribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contribution: %w", err)
	}
	if err := json.Unmarshal([]byte(violations), &d.Violations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal violations: %w", err)
	}
	if err := json.Unmarshal([]byte(reasoner), &d.Reasoner); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reasoner opinion: %w", err)
	}
	return &d, nil
}
