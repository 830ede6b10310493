// Package metrics exposes the engine's operational counters and
// histograms in Prometheus exposition format. The Collector owns its
// own registry and implements the workflow engine's telemetry
// interface; scrape it through Handler.
package metrics
