package engine

import (
	"time"

	"analytica-hq/meridian/pkg/rules"
)

// Status is the overall outcome of a compliance evaluation.
type Status string

const (
	StatusReject                Status = "REJECT"
	StatusManualReview          Status = "MANUAL_REVIEW"
	StatusApproveWithConditions Status = "APPROVE_WITH_CONDITIONS"
	StatusPass                  Status = "PASS"
)

// Finding records one failed rule.
type Finding struct {
	RuleID      string         `json:"rule_id" yaml:"rule_id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Severity    rules.Severity `json:"severity" yaml:"severity"`
	Action      rules.Action   `json:"action" yaml:"action"`

	// Message carries the failed-safe explanation when the rule could not
	// be evaluated; empty for ordinary failures.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Verdict is the aggregated result of evaluating a rule set against one
// case. Verdicts are ephemeral: recomputed every run and persisted only
// inside the workflow run's step payload.
type Verdict struct {
	Status Status `json:"status" yaml:"status"`

	// Summary is a one-line human-readable description of the status.
	Summary string `json:"summary" yaml:"summary"`

	Violations []Finding `json:"violations,omitempty" yaml:"violations,omitempty"`
	Flags      []Finding `json:"flags,omitempty" yaml:"flags,omitempty"`
	Warnings   []Finding `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	RulesEvaluated int `json:"rules_evaluated" yaml:"rules_evaluated"`
	RulesPassed    int `json:"rules_passed" yaml:"rules_passed"`

	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluated_at"`
}

// ViolatedRuleNames returns the names of all violated rules, for
// decision reasons.
func (v *Verdict) ViolatedRuleNames() []string {
	names := make([]string, 0, len(v.Violations))
	for _, f := range v.Violations {
		names = append(names, f.Name)
	}
	return names
}

// Clean reports whether the verdict carries no violations.
func (v *Verdict) Clean() bool {
	return len(v.Violations) == 0
}

// deriveStatus applies the fixed priority order.
func (v *Verdict) deriveStatus() {
	switch {
	case len(v.Violations) > 0:
		v.Status = StatusReject
		v.Summary = "application must be rejected due to policy violations"
	case len(v.Flags) > 0:
		v.Status = StatusManualReview
		v.Summary = "application requires manual review due to flagged conditions"
	case len(v.Warnings) > 0:
		v.Status = StatusApproveWithConditions
		v.Summary = "application may proceed with additional monitoring"
	default:
		v.Status = StatusPass
		v.Summary = "all policy rules satisfied"
	}
}
