package workflow

import (
	"time"

	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/underwriting"
)

// Status is the lifecycle state of a workflow run.
type Status string

const (
	// StatusPending marks a run created but not yet started.
	StatusPending Status = "PENDING"

	// StatusRunning marks a run actively executing a step.
	StatusRunning Status = "RUNNING"

	// StatusRetry marks a run waiting out a backoff delay before
	// re-executing a recoverable step.
	StatusRetry Status = "RETRY"

	// StatusCompleted marks a run that executed all eight steps.
	StatusCompleted Status = "COMPLETED"

	// StatusFailed marks a run terminated by an unrecoverable error,
	// retry exhaustion, or operator cancellation.
	StatusFailed Status = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TotalSteps is the fixed length of the underwriting pipeline.
const TotalSteps = 8

// Step indices, 1-based to match the persisted current_step column.
const (
	StepDocuments  = 1
	StepExtraction = 2
	StepBureau     = 3
	StepScoring    = 4
	StepReasoner   = 5
	StepCompliance = 6
	StepFusion     = 7
	StepFinalize   = 8
)

var stepNames = [TotalSteps + 1]string{
	"", // unused, steps are 1-based
	"documents",
	"extraction",
	"bureau",
	"scoring",
	"reasoner",
	"compliance",
	"fusion",
	"finalize",
}

// StepName returns the symbolic name for a 1-based step index.
func StepName(step int) string {
	if step < 1 || step > TotalSteps {
		return "unknown"
	}
	return stepNames[step]
}

// ScoreResult is the scorer collaborator's output.
type ScoreResult struct {
	// ProbabilityOfDefault in [0,1]; lower is better.
	ProbabilityOfDefault float64 `json:"probability_of_default" yaml:"probability_of_default"`

	// Confidence is the model's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// ModelVersion identifies the scoring model that produced the result.
	ModelVersion string `json:"model_version" yaml:"model_version"`
}

// StepState accumulates the intermediate outputs of completed steps. It
// is persisted with the run so an interrupted run can be inspected.
type StepState struct {
	Features rules.FeatureMap               `json:"features,omitempty" yaml:"features,omitempty"`
	Bureau   *underwriting.BureauSnapshot   `json:"bureau,omitempty" yaml:"bureau,omitempty"`
	Verdict  *engine.Verdict                `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Score    *ScoreResult                   `json:"score,omitempty" yaml:"score,omitempty"`
	Opinion  *underwriting.ReasonerOpinion  `json:"opinion,omitempty" yaml:"opinion,omitempty"`

	// DecisionID is set once step 7 has persisted the decision record.
	DecisionID string `json:"decision_id,omitempty" yaml:"decision_id,omitempty"`

	// Memo is the credit memo rendered at step 8.
	Memo string `json:"memo,omitempty" yaml:"memo,omitempty"`
}

// Run is one execution of the underwriting pipeline for one case.
type Run struct {
	// ID is the unique run identifier.
	ID string `json:"id" yaml:"id"`

	// CaseID references the application under evaluation.
	CaseID string `json:"case_id" yaml:"case_id"`

	// CurrentStep is the 1-based step the run is executing or, on
	// failure, the step it failed at. On completion it equals TotalSteps.
	CurrentStep int `json:"current_step" yaml:"current_step"`

	TotalSteps int    `json:"total_steps" yaml:"total_steps"`
	Status     Status `json:"status" yaml:"status"`

	// RetryCount counts retries consumed by the current step; it resets
	// when the step completes.
	RetryCount int `json:"retry_count" yaml:"retry_count"`

	// ErrorMessage holds the terminal error for FAILED runs.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`

	// Version is the optimistic-concurrency counter, incremented on every
	// persisted update.
	Version int64 `json:"version" yaml:"version"`

	State StepState `json:"state" yaml:"state"`
}

// Progress returns the fraction of steps fully completed, in [0,1].
func (r *Run) Progress() float64 {
	completed := r.CurrentStep - 1
	if r.Status == StatusCompleted {
		completed = r.TotalSteps
	}
	if completed < 0 {
		completed = 0
	}
	return float64(completed) / float64(r.TotalSteps)
}

// StepEvent is delivered to the Notifier on every step transition.
type StepEvent struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	CaseID   string    `json:"case_id" yaml:"case_id"`
	Step     int       `json:"step" yaml:"step"`
	StepName string    `json:"step_name" yaml:"step_name"`
	Status   Status    `json:"status" yaml:"status"`
	Progress float64   `json:"progress" yaml:"progress"`
	Error    string    `json:"error,omitempty" yaml:"error,omitempty"`
	At       time.Time `json:"at" yaml:"at"`
}
