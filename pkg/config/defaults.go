package config

import (
	"time"

	"analytica-hq/meridian/pkg/retention"
	"analytica-hq/meridian/pkg/telemetry/logging"
	"analytica-hq/meridian/pkg/telemetry/metrics"
)

// DefaultConfig returns a fully populated configuration with production
// defaults. Load unmarshals the YAML file over this, so omitted fields
// keep their defaults, including booleans that default to true.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   "127.0.0.1:9090",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Workflow: WorkflowConfig{
			MaxRetries:  2,
			StepTimeout: 30 * time.Second,
			RetryDelay:  2 * time.Second,
		},
		Rules: RulesConfig{
			Watch: true,
		},
		Fusion: FusionConfig{
			ApproveThreshold: 0.7,
			RejectThreshold:  0.4,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "data/runs.db",
		},
		Audit: AuditConfig{
			Backend: "sqlite",
			Path:    "data/decisions.db",
		},
		Bureau: BureauConfig{
			Timeout:              10 * time.Second,
			FallbackToSimulation: true,
		},
		Retention: retention.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
		Metrics:   metrics.DefaultConfig(),
	}
}
