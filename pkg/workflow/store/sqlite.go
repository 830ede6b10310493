package store

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
	"analytica-hq/meridian/pkg/workflow"
)

// SQLiteConfig configures the SQLite run store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default run store configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/runs.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const runSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	case_id       TEXT NOT NULL,
	current_step  INTEGER NOT NULL,
	total_steps   INTEGER NOT NULL,
	status        TEXT NOT NULL,
	retry_count   INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	completed_at  TIMESTAMP,
	updated_at    TIMESTAMP NOT NULL,
	version       INTEGER NOT NULL,
	state         TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_runs_case_status ON runs(case_id, status);
CREATE INDEX IF NOT EXISTS idx_runs_updated ON runs(updated_at);

CREATE TABLE IF NOT EXISTS cases (
	id       TEXT PRIMARY KEY,
	payload  TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
);
`

// SQLiteStore implements workflow.Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	insertRun  *sql.Stmt
	updateRun  *sql.Stmt
	getRun     *sql.Stmt
	activeRun  *sql.Stmt
	upsertCase *sql.Stmt
	getCase    *sql.Stmt
}

// NewSQLiteStore opens the database, applies the schema, and prepares
// the hot-path statements.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store %q: %w", config.Path, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger.With("component", "workflow.store"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("run store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(runSchema); err != nil {
		return fmt.Errorf("failed to create run store schema: %w", err)
	}
	return s.prepare()
}

func (s *SQLiteStore) prepare() error {
	var err error
	prepare := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = s.db.Prepare(query)
	}

	prepare(&s.insertRun, `
		INSERT INTO runs (id, case_id, current_step, total_steps, status, retry_count,
			error_message, started_at, completed_at, updated_at, version, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&s.updateRun, `
		UPDATE runs SET current_step = ?, status = ?, retry_count = ?, error_message = ?,
			completed_at = ?, updated_at = ?, version = ?, state = ?
		WHERE id = ? AND version = ?`)
	prepare(&s.getRun, `
		SELECT id, case_id, current_step, total_steps, status, retry_count,
			error_message, started_at, completed_at, updated_at, version, state
		FROM runs WHERE id = ?`)
	prepare(&s.activeRun, `
		SELECT id, case_id, current_step, total_steps, status, retry_count,
			error_message, started_at, completed_at, updated_at, version, state
		FROM runs
		WHERE case_id = ? AND status NOT IN ('COMPLETED', 'FAILED')
		ORDER BY started_at DESC LIMIT 1`)
	prepare(&s.upsertCase, `
		INSERT INTO cases (id, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`)
	prepare(&s.getCase, `SELECT payload FROM cases WHERE id = ?`)

	if err != nil {
		return fmt.Errorf("failed to prepare run store statements: %w", err)
	}
	return nil
}

// CreateRun inserts a new run row.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *workflow.Run) error {
	state, err := json.Marshal(run.State)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	_, err = s.insertRun.ExecContext(ctx,
		run.ID, run.CaseID, run.CurrentStep, run.TotalSteps, string(run.Status),
		run.RetryCount, run.ErrorMessage, run.StartedAt, nullableTime(run.CompletedAt),
		run.UpdatedAt, run.Version, string(state),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateRun writes the run guarded by its previous version. Zero rows
// affected means either the run vanished or another writer advanced it.
func (s *SQLiteStore) UpdateRun(ctx context.Context, run *workflow.Run) error {
	state, err := json.Marshal(run.State)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	res, err := s.updateRun.ExecContext(ctx,
		run.CurrentStep, string(run.Status), run.RetryCount, run.ErrorMessage,
		nullableTime(run.CompletedAt), run.UpdatedAt, run.Version, string(state),
		run.ID, run.Version-1,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for run %s: %w", run.ID, err)
	}
	if affected == 0 {
		if _, err := s.GetRun(ctx, run.ID); errors.Is(err, workflow.ErrRunNotFound) {
			return workflow.ErrRunNotFound
		}
		return fmt.Errorf("%w: run %s expected version %d", workflow.ErrVersionConflict, run.ID, run.Version-1)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*workflow.Run, error) {
	return scanRun(s.getRun.QueryRowContext(ctx, runID))
}

// ActiveRunForCase returns the case's most recent non-terminal run.
func (s *SQLiteStore) ActiveRunForCase(ctx context.Context, caseID string) (*workflow.Run, error) {
	return scanRun(s.activeRun.QueryRowContext(ctx, caseID))
}

// SaveCase upserts the case snapshot as JSON.
func (s *SQLiteStore) SaveCase(ctx context.Context, c *underwriting.Case) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal case %s: %w", c.ID, err)
	}
	if _, err := s.upsertCase.ExecContext(ctx, c.ID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save case %s: %w", c.ID, err)
	}
	return nil
}

// GetCase loads a case snapshot by ID.
func (s *SQLiteStore) GetCase(ctx context.Context, caseID string) (*underwriting.Case, error) {
	var payload string
	err := s.getCase.QueryRowContext(ctx, caseID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load case %s: %w", caseID, err)
	}
	var c underwriting.Case
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal case %s: %w", caseID, err)
	}
	return &c, nil
}

// PruneTerminal deletes terminal runs last updated before cutoff.
func (s *SQLiteStore) PruneTerminal(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE status IN ('COMPLETED', 'FAILED') AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune terminal runs: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		s.logger.Info("pruned terminal runs", "count", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}

// Close releases prepared statements and the connection pool.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertRun, s.updateRun, s.getRun, s.activeRun, s.upsertCase, s.getCase} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

func scanRun(row *sql.Row) (*workflow.Run, error) {
	var (
		run         workflow.Run
		status      string
		completedAt sql.NullTime
		state       string
	)
	err := row.Scan(&run.ID, &run.CaseID, &run.CurrentStep, &run.TotalSteps, &status,
		&run.RetryCount, &run.ErrorMessage, &run.StartedAt, &completedAt,
		&run.UpdatedAt, &run.Version, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Status = workflow.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(state), &run.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}
	return &run, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
