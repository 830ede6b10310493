package workflow

import (
	"strings"
	"testing"
	"time"

	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/underwriting"
)

func memoFixtures() (*Run, *underwriting.Case, *underwriting.Decision) {
	c := &underwriting.Case{
		ID:          "CASE-1",
		IdentityRef: "3174051209880001",
		Applicant: underwriting.Applicant{
			Age:              35,
			MonthlyIncome:    15_000_000,
			Occupation:       "karyawan",
			StableEmployment: true,
		},
		Loan: underwriting.LoanTerms{
			Amount:     120_000_000,
			TermMonths: 36,
			Purpose:    "working capital",
		},
		CollateralValue: 200_000_000,
		SubmittedAt:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Bureau: &underwriting.BureauSnapshot{
			Score:  720,
			Source: "live",
		},
	}
	run := &Run{
		ID:          "run-1",
		CaseID:      c.ID,
		CurrentStep: StepFinalize,
		TotalSteps:  TotalSteps,
		Status:      StatusRunning,
		State: StepState{
			Features: rules.FeatureMap{
				rules.FeatureDTI:  0.222,
				rules.FeatureDSCR: 4.5,
				rules.FeatureLTV:  0.6,
			},
			Verdict: &engine.Verdict{
				Status:         engine.StatusPass,
				RulesEvaluated: 11,
				RulesPassed:    11,
			},
			Score: &ScoreResult{
				ProbabilityOfDefault: 0.10,
				Confidence:           0.65,
				ModelVersion:         "heuristic-1.0.0",
			},
		},
	}
	d := &underwriting.Decision{
		ID:     "dec-1",
		CaseID: c.ID,
		RunID:  run.ID,
		Status: underwriting.DecisionApprove,
		Reason: "auto-approved: score 0.90 >= approve threshold 0.70",
		Score:  0.90,
		Reasoner: underwriting.ReasonerOpinion{
			Recommendation: underwriting.RecommendApprove,
			Confidence:     0.9,
			FreeText:       "Strengths: applicant holds stable employment.",
		},
		DecidedBy: underwriting.DeciderAuto,
		DecidedAt: time.Date(2025, 6, 1, 9, 0, 30, 0, time.UTC),
	}
	return run, c, d
}

func TestBuildMemo_Sections(t *testing.T) {
	run, c, d := memoFixtures()
	memo := BuildMemo(run, c, d)

	for _, want := range []string{
		"CREDIT MEMO",
		"Case: CASE-1    Run: run-1",
		"APPLICANT",
		"Employment: stable",
		"FACILITY",
		"Purpose: working capital",
		"CREDIT BUREAU (live)",
		"Score: 720 (LOW)",
		"RATIOS",
		"DTI:  0.222",
		"COMPLIANCE: PASS",
		"Rules evaluated: 11    Passed: 11",
		"SCORING",
		"model heuristic-1.0.0",
		"QUALITATIVE OPINION (advisory)",
		"DECISION: APPROVE",
		"Decided by AUTO",
	} {
		if !strings.Contains(memo, want) {
			t.Errorf("memo missing %q", want)
		}
	}

	// The raw identity reference never appears in the memo.
	if strings.Contains(memo, c.IdentityRef) {
		t.Error("memo must not expose the identity reference")
	}
}

func TestBuildMemo_ViolationsAndDegradedSnapshot(t *testing.T) {
	run, c, d := memoFixtures()
	c.Bureau.Degraded = true
	c.Bureau.Source = "simulated"
	run.State.Verdict = &engine.Verdict{
		Status:         engine.StatusReject,
		RulesEvaluated: 11,
		RulesPassed:    9,
		Violations: []engine.Finding{
			{RuleID: "REG_DTI_001", Name: "Maximum DTI Ratio", Severity: rules.SeverityHigh, Action: rules.ActionReject},
		},
		Warnings: []engine.Finding{
			{RuleID: "INT_INQUIRY_001", Name: "Recent Credit Inquiries", Severity: rules.SeverityLow, Action: rules.ActionWarn},
		},
	}
	d.Status = underwriting.DecisionReject
	d.Reason = "policy violations: Maximum DTI Ratio"

	memo := BuildMemo(run, c, d)
	for _, want := range []string{
		"NOTE: degraded snapshot",
		"VIOLATION [HIGH] Maximum DTI Ratio",
		"WARNING   [LOW] Recent Credit Inquiries",
		"DECISION: REJECT",
	} {
		if !strings.Contains(memo, want) {
			t.Errorf("memo missing %q", want)
		}
	}
}

func TestBuildMemo_UnsecuredDegradedOpinion(t *testing.T) {
	run, c, d := memoFixtures()
	c.CollateralValue = 0
	d.Reasoner = underwriting.DegradedOpinion()

	memo := BuildMemo(run, c, d)
	if !strings.Contains(memo, "Collateral: unsecured") {
		t.Error("memo should mark unsecured facilities")
	}
	if !strings.Contains(memo, "No qualitative signal available") {
		t.Error("memo should note the degraded opinion")
	}
}
