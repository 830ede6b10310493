// Package underwriting defines the shared data model for the Meridian
// underwriting decision core: the Case under evaluation, the terminal
// Decision record, and the qualitative reasoner opinion carried between
// workflow steps.
//
// A Case is an immutable input to exactly one workflow run. The workflow
// engine owns it for the duration of that run; nothing in this package
// mutates a Case after construction.
//
// A Decision is append-only. A manual override creates a new Decision
// record referencing the same case rather than mutating the original,
// preserving the full audit history.
package underwriting
