package workflow

import (
	"context"
	"errors"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
)

// Store errors.
var (
	// ErrRunNotFound is returned when no run matches the identifier.
	ErrRunNotFound = errors.New("workflow run not found")

	// ErrCaseNotFound is returned when no case matches the identifier.
	ErrCaseNotFound = errors.New("case not found")

	// ErrVersionConflict is returned by UpdateRun when the persisted
	// version no longer matches the caller's copy.
	ErrVersionConflict = errors.New("run version conflict")
)

// Store persists workflow runs and their cases. Implementations must be
// safe for concurrent use.
type Store interface {
	// CreateRun persists a new run. The run's Version must be 1.
	CreateRun(ctx context.Context, run *Run) error

	// UpdateRun persists run if the stored version equals run.Version-1,
	// returning ErrVersionConflict otherwise.
	UpdateRun(ctx context.Context, run *Run) error

	// GetRun returns the run by ID or ErrRunNotFound.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// ActiveRunForCase returns the non-terminal run for the case, or
	// ErrRunNotFound when the case has none.
	ActiveRunForCase(ctx context.Context, caseID string) (*Run, error)

	// SaveCase persists the case snapshot a run evaluates.
	SaveCase(ctx context.Context, c *underwriting.Case) error

	// GetCase returns the case by ID or ErrCaseNotFound.
	GetCase(ctx context.Context, caseID string) (*underwriting.Case, error)

	// PruneTerminal deletes terminal runs whose UpdatedAt is older than
	// cutoff, returning the number deleted.
	PruneTerminal(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the store's resources.
	Close() error
}
