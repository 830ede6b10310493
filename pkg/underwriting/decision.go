package underwriting

import "time"

// DecisionStatus is the terminal outcome of decision fusion.
type DecisionStatus string

const (
	// DecisionApprove approves the application automatically.
	DecisionApprove DecisionStatus = "APPROVE"

	// DecisionReject rejects the application automatically.
	DecisionReject DecisionStatus = "REJECT"

	// DecisionManualReview routes the application to a human underwriter.
	DecisionManualReview DecisionStatus = "MANUAL_REVIEW"
)

// Valid reports whether s is a recognised decision status.
func (s DecisionStatus) Valid() bool {
	switch s {
	case DecisionApprove, DecisionReject, DecisionManualReview:
		return true
	}
	return false
}

// Recommendation is the qualitative reasoner's advisory signal.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReject  Recommendation = "reject"
	RecommendReview  Recommendation = "review"

	// RecommendNone is the degraded "no qualitative signal" value.
	RecommendNone Recommendation = "none"
)

// ReasonerOpinion is the output of the qualitative reasoner collaborator.
// It is advisory only: the fusion algorithm records it in the contribution
// breakdown for audit but never lets it flip a decision reached from the
// compliance verdict and the numeric score.
type ReasonerOpinion struct {
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`

	// Confidence is the reasoner's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// FreeText is the reasoner's narrative. Carried through for the
	// credit memo and audit trail; never parsed for control decisions.
	FreeText string `json:"free_text,omitempty" yaml:"free_text,omitempty"`

	// Degraded marks the explicit fallback opinion substituted when the
	// reasoner was unavailable.
	Degraded bool `json:"degraded" yaml:"degraded"`
}

// DegradedOpinion returns the explicit "no qualitative signal" opinion
// used when the reasoner is exhausted or disabled.
func DegradedOpinion() ReasonerOpinion {
	return ReasonerOpinion{
		Recommendation: RecommendNone,
		Degraded:       true,
	}
}

// Contribution records the weight each signal actually carried in a
// Decision, for audit.
type Contribution struct {
	// Rule is 1 when the compliance verdict was clean, 0 when it vetoed.
	Rule float64 `json:"rule" yaml:"rule"`

	// Score is the creditworthiness score that entered the threshold
	// comparison.
	Score float64 `json:"score" yaml:"score"`

	// Reasoner is the advisory reasoner confidence, recorded but never
	// decisive.
	Reasoner float64 `json:"reasoner" yaml:"reasoner"`
}

// Decision is the terminal output of decision fusion for one workflow run.
// Decisions are append-only: an override appends a new record with
// DecidedBy and OverrideReason set, leaving the automatic record intact.
type Decision struct {
	// ID is the unique decision record identifier.
	ID string `json:"id" yaml:"id"`

	// CaseID references the application this decision belongs to.
	CaseID string `json:"case_id" yaml:"case_id"`

	// RunID references the workflow run that produced this decision.
	// Empty for manual overrides.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	Status DecisionStatus `json:"status" yaml:"status"`

	// Reason is the human-readable explanation for the outcome.
	Reason string `json:"reason" yaml:"reason"`

	// Score is the creditworthiness score in [0,1] used by fusion.
	Score float64 `json:"score" yaml:"score"`

	Contribution Contribution `json:"contribution" yaml:"contribution"`

	// Violations lists the names of rules whose failure vetoed the
	// application, when Status is REJECT due to compliance.
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`

	// Reasoner is the advisory opinion recorded for audit.
	Reasoner ReasonerOpinion `json:"reasoner" yaml:"reasoner"`

	// DecidedBy is "AUTO" for fusion decisions, otherwise the operator
	// identifier for manual overrides.
	DecidedBy string `json:"decided_by" yaml:"decided_by"`

	// OverrideReason is set on manual override records only.
	OverrideReason string `json:"override_reason,omitempty" yaml:"override_reason,omitempty"`

	DecidedAt time.Time `json:"decided_at" yaml:"decided_at"`
}

// DeciderAuto is the DecidedBy value for decisions produced by fusion.
const DeciderAuto = "AUTO"
