package fusion

import (
	"errors"
	"strings"
	"testing"

	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/underwriting"
)

func cleanVerdict() *engine.Verdict {
	return &engine.Verdict{Status: engine.StatusPass, RulesEvaluated: 5, RulesPassed: 5}
}

func vetoVerdict() *engine.Verdict {
	return &engine.Verdict{
		Status: engine.StatusReject,
		Violations: []engine.Finding{
			{RuleID: "REG_DTI_001", Name: "Maximum DTI Ratio", Severity: rules.SeverityHigh, Action: rules.ActionReject},
			{RuleID: "REG_AGE_001", Name: "Borrower Age Limit", Severity: rules.SeverityHigh, Action: rules.ActionReject},
		},
	}
}

func opinion() underwriting.ReasonerOpinion {
	return underwriting.ReasonerOpinion{
		Recommendation: underwriting.RecommendApprove,
		Confidence:     0.8,
	}
}

func TestNew_ThresholdValidation(t *testing.T) {
	tests := []struct {
		name    string
		approve float64
		reject  float64
		wantErr bool
	}{
		{"valid defaults", 0.7, 0.4, false},
		{"equal thresholds", 0.5, 0.5, true},
		{"inverted thresholds", 0.4, 0.7, true},
		{"approve above one", 1.1, 0.4, true},
		{"reject negative", 0.7, -0.1, true},
		{"tight valid band", 0.51, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.approve, tt.reject, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidThresholds) {
					t.Errorf("err = %v, want ErrInvalidThresholds", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFuse_ViolationVetoBeatsHighScore(t *testing.T) {
	f, err := New(0.7, 0.4, nil)
	if err != nil {
		t.Fatal(err)
	}

	d := f.Fuse(0.99, opinion(), vetoVerdict())
	if d.Status != underwriting.DecisionReject {
		t.Fatalf("status = %s, want REJECT", d.Status)
	}
	if !strings.Contains(d.Reason, "policy violations") {
		t.Errorf("reason = %q, want policy violations explanation", d.Reason)
	}
	if len(d.Violations) != 2 {
		t.Errorf("violations = %v, want both rule names", d.Violations)
	}
	if d.Contribution.Rule != 0 {
		t.Errorf("rule contribution = %v, want 0 on veto", d.Contribution.Rule)
	}
	if d.Score != 0.99 {
		t.Errorf("score = %v, want the input score preserved for audit", d.Score)
	}
}

func TestFuse_Thresholds(t *testing.T) {
	f, err := New(0.7, 0.4, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		score float64
		want  underwriting.DecisionStatus
	}{
		{"well above approve", 0.85, underwriting.DecisionApprove},
		{"exactly approve threshold", 0.7, underwriting.DecisionApprove},
		{"just below approve", 0.69, underwriting.DecisionManualReview},
		{"middle of band", 0.55, underwriting.DecisionManualReview},
		{"exactly reject threshold", 0.4, underwriting.DecisionManualReview},
		{"just below reject", 0.39, underwriting.DecisionReject},
		{"floor", 0.0, underwriting.DecisionReject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Fuse(tt.score, opinion(), cleanVerdict())
			if d.Status != tt.want {
				t.Errorf("Fuse(%v) = %s, want %s", tt.score, d.Status, tt.want)
			}
		})
	}
}

func TestFuse_ReasonerIsAdvisoryOnly(t *testing.T) {
	f, err := New(0.7, 0.4, nil)
	if err != nil {
		t.Fatal(err)
	}

	hostile := underwriting.ReasonerOpinion{
		Recommendation: underwriting.RecommendReject,
		Confidence:     0.99,
	}
	d := f.Fuse(0.9, hostile, cleanVerdict())
	if d.Status != underwriting.DecisionApprove {
		t.Errorf("status = %s; reasoner opinion must not flip an approval", d.Status)
	}
	if d.Contribution.Reasoner != 0.99 {
		t.Errorf("reasoner contribution = %v, want recorded confidence", d.Contribution.Reasoner)
	}
	if d.Reasoner.Recommendation != underwriting.RecommendReject {
		t.Error("opinion should be carried on the decision for audit")
	}
}

func TestFuse_DegradedOpinionStillDecides(t *testing.T) {
	f, err := New(0.7, 0.4, nil)
	if err != nil {
		t.Fatal(err)
	}

	d := f.Fuse(0.8, underwriting.DegradedOpinion(), cleanVerdict())
	if d.Status != underwriting.DecisionApprove {
		t.Errorf("status = %s, want APPROVE despite degraded opinion", d.Status)
	}
	if !d.Reasoner.Degraded {
		t.Error("degraded flag should be preserved on the decision")
	}
}

func TestFuse_DecidedByAuto(t *testing.T) {
	f, err := New(0.7, 0.4, nil)
	if err != nil {
		t.Fatal(err)
	}
	d := f.Fuse(0.5, opinion(), cleanVerdict())
	if d.DecidedBy != underwriting.DeciderAuto {
		t.Errorf("decided_by = %q, want %q", d.DecidedBy, underwriting.DeciderAuto)
	}
	if d.DecidedAt.IsZero() {
		t.Error("decided_at should be set")
	}
}
