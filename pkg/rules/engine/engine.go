package engine

import (
	"fmt"
	"log/slog"
	"time"

	"analytica-hq/meridian/pkg/rules"
)

// Engine evaluates rule catalogues against case features. Evaluation is
// pure and side-effect free apart from logging; a single Engine is safe
// for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// New creates a rule engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With("component", "rules.engine"),
	}
}

// Evaluate runs every rule in the set against features and aggregates the
// findings into a Verdict. Rules are evaluated independently; a rule that
// cannot be evaluated is converted to a failed-safe HIGH violation rather
// than skipped.
func (e *Engine) Evaluate(rs *rules.RuleSet, features rules.FeatureMap) *Verdict {
	v := &Verdict{
		RulesEvaluated: rs.Len(),
		EvaluatedAt:    time.Now().UTC(),
	}

	for _, r := range rs.Rules {
		passed, err := evaluateRule(r, features)
		if err != nil {
			// Failed-safe: escalate to a HIGH violation so ambiguous data
			// never silently passes a rule.
			e.logger.Warn("rule could not be evaluated, recording failed-safe violation",
				"rule_id", r.ID,
				"error", err,
			)
			v.Violations = append(v.Violations, Finding{
				RuleID:      r.ID,
				Name:        r.Name,
				Description: r.Description,
				Severity:    rules.SeverityHigh,
				Action:      rules.ActionReject,
				Message:     fmt.Sprintf("rule could not be evaluated: %v", err),
			})
			continue
		}
		if passed {
			v.RulesPassed++
			continue
		}

		f := Finding{
			RuleID:      r.ID,
			Name:        r.Name,
			Description: r.Description,
			Severity:    r.Severity,
			Action:      r.Action,
		}
		switch r.Action {
		case rules.ActionReject:
			v.Violations = append(v.Violations, f)
		case rules.ActionFlag:
			v.Flags = append(v.Flags, f)
		case rules.ActionWarn:
			v.Warnings = append(v.Warnings, f)
		}
	}

	v.deriveStatus()

	e.logger.Debug("rule set evaluated",
		"catalogue", rs.Name,
		"version", rs.Version,
		"status", v.Status,
		"violations", len(v.Violations),
		"flags", len(v.Flags),
		"warnings", len(v.Warnings),
	)

	return v
}

// evaluateRule evaluates one rule, converting panics from custom
// predicates into errors so a misbehaving escape-hatch rule cannot take
// down the run.
func evaluateRule(r *rules.Rule, features rules.FeatureMap) (passed bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			passed = false
			err = fmt.Errorf("predicate panicked: %v", rec)
		}
	}()
	return r.Evaluate(features)
}
