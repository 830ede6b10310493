package config

import (
	"time"

	"analytica-hq/meridian/pkg/retention"
	"analytica-hq/meridian/pkg/telemetry/logging"
	"analytica-hq/meridian/pkg/telemetry/metrics"
)

// Config is the root configuration for Meridian.
type Config struct {
	// Server configures the operational HTTP listener (metrics and
	// health probes only).
	Server ServerConfig `yaml:"server"`

	// Workflow configures the underwriting engine's retry and timeout
	// behaviour.
	Workflow WorkflowConfig `yaml:"workflow"`

	// Rules configures the policy rule catalogue source.
	Rules RulesConfig `yaml:"rules"`

	// Fusion configures the decision thresholds.
	Fusion FusionConfig `yaml:"fusion"`

	// Store configures run persistence.
	Store StoreConfig `yaml:"store"`

	// Audit configures the append-only decision log.
	Audit AuditConfig `yaml:"audit"`

	// Bureau configures the credit-bureau client.
	Bureau BureauConfig `yaml:"bureau"`

	// Retention configures pruning of terminal runs.
	Retention retention.Config `yaml:"retention"`

	// Logging configures the structured logger.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures Prometheus collection.
	Metrics metrics.Config `yaml:"metrics"`
}

// ServerConfig configures the operational HTTP listener.
type ServerConfig struct {
	// ListenAddress is "host:port" for /metrics and the health probes.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WorkflowConfig tunes the underwriting engine.
type WorkflowConfig struct {
	// MaxRetries is the per-step retry budget for recoverable failures.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// StepTimeout bounds each external collaborator call.
	// Default: 30s
	StepTimeout time.Duration `yaml:"step_timeout"`

	// RetryDelay is waited between retry attempts.
	// Default: 2s
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// RulesConfig configures the catalogue source.
type RulesConfig struct {
	// Path is a YAML file or directory of YAML files. Empty uses the
	// built-in catalogue.
	Path string `yaml:"path"`

	// Watch reloads the catalogue when the file changes.
	// Default: true (ignored when Path is empty)
	Watch bool `yaml:"watch"`
}

// FusionConfig holds the decision thresholds. ApproveThreshold must be
// strictly greater than RejectThreshold.
type FusionConfig struct {
	// ApproveThreshold auto-approves scores at or above it.
	// Default: 0.7
	ApproveThreshold float64 `yaml:"approve_threshold"`

	// RejectThreshold auto-rejects scores below it.
	// Default: 0.4
	RejectThreshold float64 `yaml:"reject_threshold"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: "data/runs.db"
	Path string `yaml:"path"`
}

// AuditConfig configures the decision log.
type AuditConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: "data/decisions.db"
	Path string `yaml:"path"`
}

// BureauConfig configures the credit-bureau client.
type BureauConfig struct {
	// BaseURL is the live bureau endpoint. Empty means simulation only.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the live bureau.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each bureau request.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// FallbackToSimulation substitutes a degraded simulated report when
	// the live bureau fails.
	// Default: true
	FallbackToSimulation bool `yaml:"fallback_to_simulation"`
}
