package workflow

import (
	"context"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
)

// DocumentService answers sufficiency checks and extracts financial
// metrics from the documents attached to a case.
type DocumentService interface {
	// Sufficiency reports whether the mandatory documents are present and
	// readable, listing the missing ones.
	Sufficiency(ctx context.Context, caseID string) (ok bool, missing []string, err error)

	// Metrics extracts the financial figures from the case's documents.
	Metrics(ctx context.Context, caseID string) (underwriting.FinancialMetrics, error)
}

// BureauService fetches the credit-bureau snapshot for an identity
// reference. Implementations may return a snapshot with Degraded set
// instead of an error when the live bureau is unavailable; the engine
// treats that as success.
type BureauService interface {
	Fetch(ctx context.Context, identityRef string) (*underwriting.BureauSnapshot, error)
}

// ScorerService produces the probability of default for a case.
type ScorerService interface {
	Score(ctx context.Context, c *underwriting.Case) (*ScoreResult, error)
}

// ReasonerService produces the advisory qualitative opinion. A failure
// here never fails the run; the engine substitutes the degraded opinion.
type ReasonerService interface {
	Analyze(ctx context.Context, c *underwriting.Case) (underwriting.ReasonerOpinion, error)
}

// Notifier receives step transition events. Implementations must never
// block the engine; drop events rather than stall a run.
type Notifier interface {
	StepChanged(ev StepEvent)
}

// DecisionSink is the append-only decision log. Append must be durable
// before it returns; the engine will not advance past step 7 on a
// failed append.
type DecisionSink interface {
	Append(ctx context.Context, d *underwriting.Decision) error
	Latest(ctx context.Context, caseID string) (*underwriting.Decision, error)
}

// Metrics receives engine telemetry. All methods must be cheap and
// non-blocking.
type Metrics interface {
	ObserveStep(step string, outcome string, d time.Duration)
	RetryScheduled(step string)
	RunFinished(status Status)
	DecisionIssued(status underwriting.DecisionStatus)
	FindingsRecorded(violations, flags, warnings int)
}

type nopNotifier struct{}

func (nopNotifier) StepChanged(StepEvent) {}

type nopMetrics struct{}

func (nopMetrics) ObserveStep(string, string, time.Duration)  {}
func (nopMetrics) RetryScheduled(string)                      {}
func (nopMetrics) RunFinished(Status)                         {}
func (nopMetrics) DecisionIssued(underwriting.DecisionStatus) {}
func (nopMetrics) FindingsRecorded(int, int, int)             {}
