package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"analytica-hq/meridian/pkg/workflow"
)

// Config controls retention pruning.
type Config struct {
	// Enabled turns scheduled pruning on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is the cron expression for pruning runs.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`

	// RunTTL is how long terminal runs are kept.
	// Default: 2160h (90 days)
	RunTTL time.Duration `yaml:"run_ttl"`
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Schedule: "0 3 * * *",
		RunTTL:   90 * 24 * time.Hour,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RunTTL <= 0 {
		return fmt.Errorf("run TTL must be positive, got %s", c.RunTTL)
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", c.Schedule, err)
	}
	return nil
}

// Pruner deletes terminal runs older than the retention window.
type Pruner struct {
	config Config
	store  workflow.Store
	logger *slog.Logger
	cron   *cron.Cron
}

// NewPruner creates a pruner. Start must be called to schedule it.
func NewPruner(config Config, store workflow.Store, logger *slog.Logger) (*Pruner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		config: config,
		store:  store,
		logger: logger.With("component", "retention"),
	}, nil
}

// PruneOnce runs a single pruning pass.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-p.config.RunTTL)
	pruned, err := p.store.PruneTerminal(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention prune failed: %w", err)
	}
	p.logger.Info("retention prune finished",
		"pruned", pruned,
		"cutoff", cutoff,
	)
	return pruned, nil
}

// Start schedules the pruning job. No-op when disabled.
func (p *Pruner) Start() error {
	if !p.config.Enabled {
		p.logger.Info("retention pruning disabled")
		return nil
	}
	p.cron = cron.New()
	_, err := p.cron.AddFunc(p.config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := p.PruneOnce(ctx); err != nil {
			p.logger.Error("scheduled prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention prune: %w", err)
	}
	p.cron.Start()
	p.logger.Info("retention pruning scheduled",
		"schedule", p.config.Schedule,
		"run_ttl", p.config.RunTTL,
	)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (p *Pruner) Stop() {
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}
