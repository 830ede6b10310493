package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"analytica-hq/meridian/pkg/telemetry/logging"
)

// Load reads the configuration file, applies MERIDIAN_* environment
// overrides, and validates the result. An empty path loads defaults
// plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets operators override individual settings without
// editing the file. Unparseable values are ignored; validation catches
// anything that matters.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setInt := func(key string, dst *int) {
		if val := os.Getenv(key); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if val := os.Getenv(key); val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				*dst = f
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	setString("MERIDIAN_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("MERIDIAN_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("MERIDIAN_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setInt("MERIDIAN_WORKFLOW_MAX_RETRIES", &cfg.Workflow.MaxRetries)
	setDuration("MERIDIAN_WORKFLOW_STEP_TIMEOUT", &cfg.Workflow.StepTimeout)
	setDuration("MERIDIAN_WORKFLOW_RETRY_DELAY", &cfg.Workflow.RetryDelay)

	setString("MERIDIAN_RULES_PATH", &cfg.Rules.Path)
	setBool("MERIDIAN_RULES_WATCH", &cfg.Rules.Watch)

	setFloat("MERIDIAN_FUSION_APPROVE_THRESHOLD", &cfg.Fusion.ApproveThreshold)
	setFloat("MERIDIAN_FUSION_REJECT_THRESHOLD", &cfg.Fusion.RejectThreshold)

	setString("MERIDIAN_STORE_BACKEND", &cfg.Store.Backend)
	setString("MERIDIAN_STORE_PATH", &cfg.Store.Path)
	setString("MERIDIAN_AUDIT_BACKEND", &cfg.Audit.Backend)
	setString("MERIDIAN_AUDIT_PATH", &cfg.Audit.Path)

	setString("MERIDIAN_BUREAU_BASE_URL", &cfg.Bureau.BaseURL)
	setString("MERIDIAN_BUREAU_API_KEY", &cfg.Bureau.APIKey)
	setDuration("MERIDIAN_BUREAU_TIMEOUT", &cfg.Bureau.Timeout)
	setBool("MERIDIAN_BUREAU_FALLBACK", &cfg.Bureau.FallbackToSimulation)

	setBool("MERIDIAN_RETENTION_ENABLED", &cfg.Retention.Enabled)
	setString("MERIDIAN_RETENTION_SCHEDULE", &cfg.Retention.Schedule)
	setDuration("MERIDIAN_RETENTION_RUN_TTL", &cfg.Retention.RunTTL)

	setString("MERIDIAN_LOG_LEVEL", &cfg.Logging.Level)
	if val := os.Getenv("MERIDIAN_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = logging.Format(val)
	}
	setBool("MERIDIAN_LOG_REDACT_PII", &cfg.Logging.RedactPII)

	setBool("MERIDIAN_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("MERIDIAN_METRICS_NAMESPACE", &cfg.Metrics.Namespace)
}
