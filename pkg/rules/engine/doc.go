// Package engine evaluates a rule catalogue against a case feature map
// and produces a compliance verdict.
//
// # Failed-safe evaluation
//
// A predicate that cannot be evaluated (missing required feature, bad
// operator) is never skipped and never propagates an error. It is
// recorded as a violation with severity escalated to HIGH and a
// descriptive message. Ambiguous data must never silently pass a rule.
//
// # Verdict derivation
//
// Findings are aggregated by rule action: REJECT failures become
// violations, FLAG failures become flags, WARN failures become warnings.
// The overall status is derived by fixed priority, first match wins:
//
//	violations non-empty -> REJECT
//	flags non-empty      -> MANUAL_REVIEW
//	warnings non-empty   -> APPROVE_WITH_CONDITIONS
//	otherwise            -> PASS
//
// Evaluation is pure and order-independent: permuting the catalogue
// changes report ordering only, never the status.
//
// The package also provides the numeric ratio helpers (DTI, DSCR, LTV)
// with an explicit degenerate-input policy, and Featurize, which flattens
// a case into the feature map rules evaluate against.
package engine
