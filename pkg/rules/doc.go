// Package rules defines the declarative compliance rule model: a Rule is a
// predicate over a numeric feature map plus severity and action metadata,
// and a RuleSet is an ordered, versioned catalogue of rules.
//
// Predicates are tagged comparison variants (lt, lte, gt, gte, eq, neq,
// between) over named features rather than opaque closures, so a catalogue
// can be serialized to YAML, diffed, and audited. A single escape hatch
// remains for logic the operators cannot express: a Rule may carry a
// Custom predicate function, at the cost of not being serializable.
//
// The catalogue is configuration, not code. The rule engine accepts an
// externally supplied RuleSet (see rules/source for file loading and hot
// reload); adding or removing a rule is a catalogue edit, never an engine
// change.
package rules
