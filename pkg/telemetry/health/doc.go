// Package health answers liveness and readiness probes. Components
// register named check functions; the HTTP handler runs them and
// reports aggregate status for orchestrator probes.
package health
