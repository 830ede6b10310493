// Package store provides persistence for workflow runs and case
// snapshots. The SQLite store is the production backend; the memory
// store backs tests and ephemeral deployments.
package store
