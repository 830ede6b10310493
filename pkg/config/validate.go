package config

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Validate checks the whole configuration and collects every problem
// rather than stopping at the first one.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("server.listen_address is required"))
	} else if _, _, err := net.SplitHostPort(c.Server.ListenAddress); err != nil {
		errs = append(errs, fmt.Errorf("server.listen_address %q is not host:port: %w", c.Server.ListenAddress, err))
	}

	if c.Workflow.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("workflow.max_retries cannot be negative"))
	}
	if c.Workflow.StepTimeout <= 0 {
		errs = append(errs, fmt.Errorf("workflow.step_timeout must be positive"))
	}
	if c.Workflow.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("workflow.retry_delay cannot be negative"))
	}

	if c.Rules.Path != "" {
		if _, err := os.Stat(c.Rules.Path); err != nil {
			errs = append(errs, fmt.Errorf("rules.path %q is not accessible: %w", c.Rules.Path, err))
		}
	}

	if c.Fusion.ApproveThreshold < 0 || c.Fusion.ApproveThreshold > 1 {
		errs = append(errs, fmt.Errorf("fusion.approve_threshold must be in [0,1], got %v", c.Fusion.ApproveThreshold))
	}
	if c.Fusion.RejectThreshold < 0 || c.Fusion.RejectThreshold > 1 {
		errs = append(errs, fmt.Errorf("fusion.reject_threshold must be in [0,1], got %v", c.Fusion.RejectThreshold))
	}
	if c.Fusion.ApproveThreshold <= c.Fusion.RejectThreshold {
		errs = append(errs, fmt.Errorf("fusion.approve_threshold (%v) must be strictly greater than fusion.reject_threshold (%v)",
			c.Fusion.ApproveThreshold, c.Fusion.RejectThreshold))
	}

	if err := validateBackend("store.backend", c.Store.Backend, c.Store.Path); err != nil {
		errs = append(errs, err)
	}
	if err := validateBackend("audit.backend", c.Audit.Backend, c.Audit.Path); err != nil {
		errs = append(errs, err)
	}

	if c.Bureau.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("bureau.timeout must be positive"))
	}

	if err := c.Retention.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateBackend(field, backend, path string) error {
	switch backend {
	case "sqlite":
		if path == "" {
			return fmt.Errorf("%s is sqlite but no path is set", field)
		}
	case "memory":
	default:
		return fmt.Errorf("%s must be \"sqlite\" or \"memory\", got %q", field, backend)
	}
	return nil
}
