package engine

import (
	"strings"
	"testing"

	"analytica-hq/meridian/pkg/rules"
)

func rule(id string, action rules.Action, pred *rules.Predicate) *rules.Rule {
	severity := rules.SeverityHigh
	switch action {
	case rules.ActionFlag:
		severity = rules.SeverityMedium
	case rules.ActionWarn:
		severity = rules.SeverityLow
	}
	return &rules.Rule{
		ID:       id,
		Name:     id,
		Severity: severity,
		Action:   action,
		When:     pred,
	}
}

func TestEvaluate_StatusDerivation(t *testing.T) {
	features := rules.FeatureMap{"x": 10}
	pass := &rules.Predicate{Feature: "x", Op: rules.OpGT, Value: 5}
	fail := &rules.Predicate{Feature: "x", Op: rules.OpLT, Value: 5}

	tests := []struct {
		name  string
		rules []*rules.Rule
		want  Status
	}{
		{
			"all pass",
			[]*rules.Rule{rule("A", rules.ActionReject, pass), rule("B", rules.ActionWarn, pass)},
			StatusPass,
		},
		{
			"warning only",
			[]*rules.Rule{rule("A", rules.ActionReject, pass), rule("B", rules.ActionWarn, fail)},
			StatusApproveWithConditions,
		},
		{
			"flag outranks warning",
			[]*rules.Rule{rule("A", rules.ActionFlag, fail), rule("B", rules.ActionWarn, fail)},
			StatusManualReview,
		},
		{
			"violation outranks everything",
			[]*rules.Rule{rule("A", rules.ActionReject, fail), rule("B", rules.ActionFlag, fail), rule("C", rules.ActionWarn, fail)},
			StatusReject,
		},
	}

	e := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &rules.RuleSet{Name: "t", Rules: tt.rules}
			v := e.Evaluate(rs, features)
			if v.Status != tt.want {
				t.Errorf("status = %s, want %s", v.Status, tt.want)
			}
		})
	}
}

func TestEvaluate_OrderIndependent(t *testing.T) {
	features := rules.FeatureMap{"x": 10}
	pass := &rules.Predicate{Feature: "x", Op: rules.OpGT, Value: 5}
	fail := &rules.Predicate{Feature: "x", Op: rules.OpLT, Value: 5}

	forward := []*rules.Rule{
		rule("A", rules.ActionReject, fail),
		rule("B", rules.ActionFlag, fail),
		rule("C", rules.ActionWarn, pass),
	}
	reversed := []*rules.Rule{forward[2], forward[1], forward[0]}

	e := New(nil)
	v1 := e.Evaluate(&rules.RuleSet{Name: "f", Rules: forward}, features)
	v2 := e.Evaluate(&rules.RuleSet{Name: "r", Rules: reversed}, features)

	if v1.Status != v2.Status {
		t.Errorf("status differs by rule order: %s vs %s", v1.Status, v2.Status)
	}
	if len(v1.Violations) != len(v2.Violations) || len(v1.Flags) != len(v2.Flags) {
		t.Error("finding counts differ by rule order")
	}
	if v1.RulesPassed != v2.RulesPassed {
		t.Errorf("passed counts differ: %d vs %d", v1.RulesPassed, v2.RulesPassed)
	}
}

func TestEvaluate_MissingFeatureFailsSafe(t *testing.T) {
	rs := &rules.RuleSet{
		Name: "t",
		Rules: []*rules.Rule{
			// A warn-level rule on an absent feature must still escalate.
			rule("W1", rules.ActionWarn, &rules.Predicate{Feature: "absent", Op: rules.OpGT, Value: 1}),
		},
	}

	v := New(nil).Evaluate(rs, rules.FeatureMap{})
	if v.Status != StatusReject {
		t.Fatalf("status = %s, want %s", v.Status, StatusReject)
	}
	if len(v.Violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(v.Violations))
	}
	f := v.Violations[0]
	if f.Severity != rules.SeverityHigh {
		t.Errorf("failed-safe severity = %s, want HIGH", f.Severity)
	}
	if !strings.Contains(f.Message, "could not be evaluated") {
		t.Errorf("message = %q, want evaluation failure explanation", f.Message)
	}
}

func TestEvaluate_PanickingCustomPredicateContained(t *testing.T) {
	rs := &rules.RuleSet{
		Name: "t",
		Rules: []*rules.Rule{{
			ID:       "P1",
			Name:     "panics",
			Severity: rules.SeverityLow,
			Action:   rules.ActionWarn,
			Custom:   func(rules.FeatureMap) (bool, error) { panic("boom") },
		}},
	}

	v := New(nil).Evaluate(rs, rules.FeatureMap{})
	if v.Status != StatusReject {
		t.Fatalf("status = %s, want REJECT for contained panic", v.Status)
	}
	if len(v.Violations) != 1 || !strings.Contains(v.Violations[0].Message, "panicked") {
		t.Errorf("violations = %+v, want one panic finding", v.Violations)
	}
}

func TestEvaluate_IndependentRules(t *testing.T) {
	// One failing rule must not stop the rest from being evaluated.
	features := rules.FeatureMap{"x": 10}
	rs := &rules.RuleSet{
		Name: "t",
		Rules: []*rules.Rule{
			rule("A", rules.ActionReject, &rules.Predicate{Feature: "missing", Op: rules.OpGT, Value: 1}),
			rule("B", rules.ActionReject, &rules.Predicate{Feature: "x", Op: rules.OpGT, Value: 5}),
			rule("C", rules.ActionWarn, &rules.Predicate{Feature: "x", Op: rules.OpLT, Value: 5}),
		},
	}

	v := New(nil).Evaluate(rs, features)
	if v.RulesEvaluated != 3 {
		t.Errorf("evaluated = %d, want 3", v.RulesEvaluated)
	}
	if v.RulesPassed != 1 {
		t.Errorf("passed = %d, want 1", v.RulesPassed)
	}
	if len(v.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(v.Warnings))
	}
}
