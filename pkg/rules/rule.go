package rules

import (
	"errors"
	"fmt"
)

// Severity classifies how serious a rule failure is.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Valid reports whether s is a recognised severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Action is what a rule failure contributes to the compliance verdict.
type Action string

const (
	// ActionReject contributes a violation; any violation vetoes the case.
	ActionReject Action = "REJECT"

	// ActionFlag contributes a flag; flags force manual review.
	ActionFlag Action = "FLAG"

	// ActionWarn contributes a warning; warnings allow approval with
	// conditions.
	ActionWarn Action = "WARN"
)

// Valid reports whether a is a recognised action.
func (a Action) Valid() bool {
	switch a {
	case ActionReject, ActionFlag, ActionWarn:
		return true
	}
	return false
}

// Operator identifies a comparison predicate variant.
type Operator string

const (
	OpLT      Operator = "lt"
	OpLTE     Operator = "lte"
	OpGT      Operator = "gt"
	OpGTE     Operator = "gte"
	OpEQ      Operator = "eq"
	OpNEQ     Operator = "neq"
	OpBetween Operator = "between" // inclusive on both ends
)

// MissingFeatureError reports that a predicate referenced a feature absent
// from the evaluated map. The engine converts it to a failed-safe
// violation rather than letting it escape.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Feature)
}

// Predicate is a serializable comparison over one named feature. The
// predicate expresses the condition under which the rule PASSES; a rule
// whose predicate evaluates false has failed.
type Predicate struct {
	// Feature is the dotted feature name to compare.
	Feature string `yaml:"feature" json:"feature"`

	// Op is the comparison variant.
	Op Operator `yaml:"op" json:"op"`

	// Value is the comparison operand for single-operand operators.
	Value float64 `yaml:"value,omitempty" json:"value,omitempty"`

	// Min and Max bound the between operator, inclusive.
	Min float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Eval evaluates the predicate against features. It returns a
// MissingFeatureError when the referenced feature is absent.
func (p *Predicate) Eval(features FeatureMap) (bool, error) {
	v, ok := features.Lookup(p.Feature)
	if !ok {
		return false, &MissingFeatureError{Feature: p.Feature}
	}

	switch p.Op {
	case OpLT:
		return v < p.Value, nil
	case OpLTE:
		return v <= p.Value, nil
	case OpGT:
		return v > p.Value, nil
	case OpGTE:
		return v >= p.Value, nil
	case OpEQ:
		return v == p.Value, nil
	case OpNEQ:
		return v != p.Value, nil
	case OpBetween:
		return v >= p.Min && v <= p.Max, nil
	default:
		return false, fmt.Errorf("unknown operator %q", p.Op)
	}
}

// Validate checks the predicate is well formed.
func (p *Predicate) Validate() error {
	if p.Feature == "" {
		return errors.New("predicate feature cannot be empty")
	}
	switch p.Op {
	case OpLT, OpLTE, OpGT, OpGTE, OpEQ, OpNEQ:
		return nil
	case OpBetween:
		if p.Min > p.Max {
			return fmt.Errorf("between predicate on %q: min %v exceeds max %v", p.Feature, p.Min, p.Max)
		}
		return nil
	default:
		return fmt.Errorf("unknown operator %q", p.Op)
	}
}

// CustomPredicate is the escape hatch for logic the tagged operators
// cannot express. Implementations must be pure and must return an error
// (never panic) when a required feature is absent.
type CustomPredicate func(features FeatureMap) (bool, error)

// Rule is one declarative compliance predicate with metadata. Rules are
// stateless and read-only after registration.
type Rule struct {
	// ID is the stable rule identifier, e.g. "REG_DTI_001".
	ID string `yaml:"id" json:"id"`

	// Name is the short human-readable name.
	Name string `yaml:"name" json:"name"`

	// Description explains the constraint the rule encodes.
	Description string `yaml:"description" json:"description"`

	Severity Severity `yaml:"severity" json:"severity"`
	Action   Action   `yaml:"action" json:"action"`

	// When is the pass condition. Exactly one of When and Custom must be
	// set.
	When *Predicate `yaml:"when,omitempty" json:"when,omitempty"`

	// Custom is the non-serializable escape hatch predicate.
	Custom CustomPredicate `yaml:"-" json:"-"`
}

// Evaluate reports whether the rule passes for the given features.
func (r *Rule) Evaluate(features FeatureMap) (bool, error) {
	if r.Custom != nil {
		return r.Custom(features)
	}
	if r.When == nil {
		return false, fmt.Errorf("rule %q has no predicate", r.ID)
	}
	return r.When.Eval(features)
}

// Validate checks the rule is well formed.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return errors.New("rule id cannot be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("rule %q: name cannot be empty", r.ID)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %q: invalid severity %q", r.ID, r.Severity)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("rule %q: invalid action %q", r.ID, r.Action)
	}
	if r.When == nil && r.Custom == nil {
		return fmt.Errorf("rule %q: one of when/custom predicate is required", r.ID)
	}
	if r.When != nil && r.Custom != nil {
		return fmt.Errorf("rule %q: when and custom predicates are mutually exclusive", r.ID)
	}
	if r.When != nil {
		if err := r.When.Validate(); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}
	return nil
}

// RuleSet is an ordered catalogue of rules. Order affects report ordering
// only, never the verdict.
type RuleSet struct {
	// Version identifies the catalogue revision, e.g. "2024.1".
	Version string `yaml:"version" json:"version"`

	// Name identifies the catalogue, e.g. "lending-policy".
	Name string `yaml:"name" json:"name"`

	Rules []*Rule `yaml:"rules" json:"rules"`
}

// Validate checks the catalogue: non-empty, unique IDs, well-formed rules.
func (rs *RuleSet) Validate() error {
	if rs == nil || len(rs.Rules) == 0 {
		return errors.New("rule set cannot be empty")
	}
	seen := make(map[string]struct{}, len(rs.Rules))
	for _, r := range rs.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rules)
}
