package workflow

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the engine's public surface.
var (
	// ErrRunConflict is returned by Submit when the case already has an
	// active run. One case, one run.
	ErrRunConflict = errors.New("case already has an active run")

	// ErrCancelled records an operator cancellation observed at a step
	// boundary.
	ErrCancelled = errors.New("cancelled by operator")

	// ErrDataIncomplete marks a case rejected at the document stage
	// because mandatory documents were missing or unreadable.
	ErrDataIncomplete = errors.New("application data incomplete")

	// ErrEngineClosed is returned by Submit after Close.
	ErrEngineClosed = errors.New("workflow engine is closed")

	// ErrNotReviewable is returned by Override when the latest decision
	// is not MANUAL_REVIEW.
	ErrNotReviewable = errors.New("latest decision is not open for manual review")
)

// TimeoutError marks a step that exceeded its time budget. Timeouts on
// external collaborator steps are recoverable within the retry budget.
type TimeoutError struct {
	Step    int
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("step %d (%s) timed out after %s", e.Step, StepName(e.Step), e.Timeout)
}

// ServiceError wraps a failure reported by an external collaborator.
// Recoverable controls whether the engine may retry the step.
type ServiceError struct {
	Step        int
	Service     string
	Recoverable bool
	Cause       error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("step %d (%s): %s service failed: %v", e.Step, StepName(e.Step), e.Service, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// ValidationError marks a structurally invalid application. Always
// terminal: bad input does not improve with retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid application: %s %s", e.Field, e.Reason)
}

// recoverable reports whether err may be retried at the given step.
func recoverable(step int, err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return externalStep(step)
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Recoverable && retryableStep(step)
	}
	return false
}

// externalStep reports whether the step calls an external collaborator.
func externalStep(step int) bool {
	switch step {
	case StepDocuments, StepExtraction, StepBureau, StepScoring, StepReasoner:
		return true
	}
	return false
}

// retryableStep reports whether service failures at the step consume the
// retry budget rather than failing the run outright.
func retryableStep(step int) bool {
	switch step {
	case StepBureau, StepScoring, StepReasoner:
		return true
	}
	return false
}
