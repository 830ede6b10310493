// Package reasoner produces the advisory qualitative opinion on a case.
// The opinion is a narrative plus a recommendation and never carries
// decision authority; fusion records it for the credit memo and audit
// trail only. The Advisor implementation is rule-of-thumb driven so the
// pipeline works without an external language model, behind the same
// interface a hosted model would use.
package reasoner
