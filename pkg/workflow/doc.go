// Package workflow drives a loan application through the eight-step
// underwriting pipeline as a persistent state machine.
//
// The steps, in order:
//
//	1. documents    reject invalid applications, check document sufficiency
//	2. extraction   aggregate the extracted financial metrics
//	3. bureau       fetch the credit-bureau snapshot
//	4. scoring      obtain the probability of default from the scorer
//	5. reasoner     obtain the advisory qualitative opinion
//	6. compliance   featurize the case and evaluate the rule catalogue
//	7. fusion       fuse the signals and persist the decision
//	8. finalize     build the credit memo and emit completion events
//
// Every step transition is persisted before the next step begins, so a
// run interrupted by a crash can be inspected and resumed from its last
// recorded step. Writes use optimistic versioning; a version conflict
// means another writer touched the run and the engine refuses to
// continue.
//
// Failure handling is step-aware. The bureau, scoring, and reasoner
// steps call external services and are retried with a bounded budget;
// validation and document failures are always terminal; a failure after
// the decision has been persisted (step 8) marks the run FAILED but
// never erases the decision. Collaborators that return an explicitly
// degraded payload are treated as having succeeded, because the
// fallback was deliberate, and an exhausted reasoner degrades to the
// "no qualitative signal" opinion instead of failing the run.
//
// Cancellation is cooperative: an operator cancel is observed at the
// next step boundary, never mid-step, so the persisted state always
// reflects a completed step.
package workflow
