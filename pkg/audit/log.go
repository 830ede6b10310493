package audit

import (
	"context"
	"errors"

	"analytica-hq/meridian/pkg/underwriting"
)

// ErrNoDecision is returned when a case has no decision records.
var ErrNoDecision = errors.New("no decision recorded for case")

// Log is the append-only decision store. Append must be durable before
// it returns; callers sequence on it.
type Log interface {
	// Append writes one immutable decision record.
	Append(ctx context.Context, d *underwriting.Decision) error

	// Latest returns the newest record for the case, or ErrNoDecision.
	Latest(ctx context.Context, caseID string) (*underwriting.Decision, error)

	// History returns all records for the case, oldest first.
	History(ctx context.Context, caseID string) ([]*underwriting.Decision, error)

	// Close releases the log's resources.
	Close() error
}
