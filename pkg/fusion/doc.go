// Package fusion combines the compliance verdict, the numeric
// creditworthiness score, and the advisory reasoner opinion into a final
// underwriting decision.
//
// The algorithm is a strict priority chain with short-circuiting:
//
//  1. Any compliance violation vetoes the case: REJECT, regardless of
//     score. Regulatory violations must never be overridden by a
//     favorable score.
//  2. score >= approve threshold: APPROVE.
//  3. score <  reject threshold: REJECT.
//  4. Otherwise the score is in the borderline band: MANUAL_REVIEW.
//
// The reasoner opinion is advisory only. It is recorded in the decision's
// contribution breakdown for audit but cannot flip an outcome decided by
// steps 1-3; a non-reproducible natural-language signal must not override
// a numeric, reproducible one.
//
// The approve threshold must be strictly greater than the reject
// threshold; a violating pair is a configuration error rejected at
// construction, never discovered mid-run.
package fusion
