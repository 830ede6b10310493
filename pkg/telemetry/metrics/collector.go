package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"analytica-hq/meridian/pkg/underwriting"
	"analytica-hq/meridian/pkg/workflow"
)

// Config configures the metrics collector.
type Config struct {
	// Enabled turns collection on. A disabled collector records nothing
	// but still serves an empty registry.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "meridian"
	Namespace string `yaml:"namespace"`

	// StepDurationBuckets are the histogram buckets for step latency in
	// seconds. Defaults cover local steps through slow external calls.
	StepDurationBuckets []float64 `yaml:"step_duration_buckets"`
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "meridian",
	}
}

// Collector records workflow and rule-engine telemetry. It implements
// workflow.Metrics. Safe for concurrent use.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	stepDuration    *prometheus.HistogramVec
	stepRetries     *prometheus.CounterVec
	runsFinished    *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	findings        *prometheus.CounterVec
	catalogueReload prometheus.Counter
}

// NewCollector creates a collector with its own registry. A nil
// registry allocates a fresh one.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}
	if len(cfg.StepDurationBuckets) == 0 {
		cfg.StepDurationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "workflow",
			Name:      "step_duration_seconds",
			Help:      "Duration of each pipeline step by outcome.",
			Buckets:   cfg.StepDurationBuckets,
		}, []string{"step", "outcome"}),
		stepRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "workflow",
			Name:      "step_retries_total",
			Help:      "Retries scheduled per pipeline step.",
		}, []string{"step"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "workflow",
			Name:      "runs_finished_total",
			Help:      "Runs reaching a terminal status.",
		}, []string{"status"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "decisions",
			Name:      "issued_total",
			Help:      "Decisions appended to the audit log by status.",
		}, []string{"status"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "rules",
			Name:      "findings_total",
			Help:      "Rule findings by action.",
		}, []string{"action"}),
		catalogueReload: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "rules",
			Name:      "catalogue_reloads_total",
			Help:      "Successful rule catalogue reloads.",
		}),
	}

	registry.MustRegister(
		c.stepDuration,
		c.stepRetries,
		c.runsFinished,
		c.decisions,
		c.findings,
		c.catalogueReload,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveStep records one step execution.
func (c *Collector) ObserveStep(step, outcome string, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.stepDuration.WithLabelValues(step, outcome).Observe(d.Seconds())
}

// RetryScheduled counts a scheduled retry.
func (c *Collector) RetryScheduled(step string) {
	if !c.config.Enabled {
		return
	}
	c.stepRetries.WithLabelValues(step).Inc()
}

// RunFinished counts a terminal run.
func (c *Collector) RunFinished(status workflow.Status) {
	if !c.config.Enabled {
		return
	}
	c.runsFinished.WithLabelValues(string(status)).Inc()
}

// DecisionIssued counts an appended decision.
func (c *Collector) DecisionIssued(status underwriting.DecisionStatus) {
	if !c.config.Enabled {
		return
	}
	c.decisions.WithLabelValues(string(status)).Inc()
}

// FindingsRecorded counts rule findings by action.
func (c *Collector) FindingsRecorded(violations, flags, warnings int) {
	if !c.config.Enabled {
		return
	}
	c.findings.WithLabelValues("reject").Add(float64(violations))
	c.findings.WithLabelValues("flag").Add(float64(flags))
	c.findings.WithLabelValues("warn").Add(float64(warnings))
}

// CatalogueReloaded counts a successful catalogue reload.
func (c *Collector) CatalogueReloaded() {
	if !c.config.Enabled {
		return
	}
	c.catalogueReload.Inc()
}
