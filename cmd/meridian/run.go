package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"analytica-hq/meridian/pkg/audit"
	"analytica-hq/meridian/pkg/config"
	"analytica-hq/meridian/pkg/fusion"
	"analytica-hq/meridian/pkg/providers/bureau"
	"analytica-hq/meridian/pkg/providers/documents"
	"analytica-hq/meridian/pkg/providers/notify"
	"analytica-hq/meridian/pkg/providers/reasoner"
	"analytica-hq/meridian/pkg/providers/scorer"
	"analytica-hq/meridian/pkg/retention"
	"analytica-hq/meridian/pkg/rules"
	ruleengine "analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/rules/source"
	"analytica-hq/meridian/pkg/telemetry/health"
	"analytica-hq/meridian/pkg/telemetry/logging"
	"analytica-hq/meridian/pkg/telemetry/metrics"
	"analytica-hq/meridian/pkg/workflow"
	"analytica-hq/meridian/pkg/workflow/store"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the underwriting engine",
	Long: `Start the underwriting engine with the specified configuration.

The engine accepts applications through its library interface, exposes
metrics and health probes on the operational listener, and prunes
expired runs on the configured schedule.

Examples:
  # Start with defaults (built-in catalogue, sqlite storage)
  meridian run

  # Start with a custom config
  meridian run --config /etc/meridian/config.yaml

  # Validate config without starting
  meridian run --dry-run`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override operational listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	collector := metrics.NewCollector(cfg.Metrics, nil)

	// Rule catalogue: file-backed with hot reload, or the built-in set.
	var catalogueSource source.Source
	watch := false
	if cfg.Rules.Path != "" {
		catalogueSource = source.NewFileSource(cfg.Rules.Path, logger)
		watch = cfg.Rules.Watch
	} else {
		logger.Info("no catalogue path configured, using built-in rules")
		catalogueSource = source.NewMemorySource(rules.DefaultRuleSet())
	}
	provider, err := source.NewProvider(catalogueSource, watch, logger)
	if err != nil {
		return err
	}
	defer provider.Close()
	provider.OnReload(collector.CatalogueReloaded)

	fuser, err := fusion.New(cfg.Fusion.ApproveThreshold, cfg.Fusion.RejectThreshold, logger)
	if err != nil {
		return err
	}

	var runStore workflow.Store
	if cfg.Store.Backend == "memory" {
		runStore = store.NewMemoryStore()
	} else {
		sqliteCfg := store.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Store.Path
		runStore, err = store.NewSQLiteStore(sqliteCfg, logger)
		if err != nil {
			return err
		}
	}
	defer runStore.Close()

	var decisionLog audit.Log
	if cfg.Audit.Backend == "memory" {
		decisionLog = audit.NewMemoryLog()
	} else {
		auditCfg := audit.DefaultSQLiteConfig()
		auditCfg.Path = cfg.Audit.Path
		decisionLog, err = audit.NewSQLiteLog(auditCfg, logger)
		if err != nil {
			return err
		}
	}
	defer decisionLog.Close()

	bureauClient := bureau.NewClient(bureau.Config{
		BaseURL:              cfg.Bureau.BaseURL,
		APIKey:               cfg.Bureau.APIKey,
		Timeout:              cfg.Bureau.Timeout,
		FallbackToSimulation: cfg.Bureau.FallbackToSimulation,
	}, logger)

	engine, err := workflow.NewEngine(workflow.Config{
		MaxRetries:  cfg.Workflow.MaxRetries,
		StepTimeout: cfg.Workflow.StepTimeout,
		RetryDelay:  cfg.Workflow.RetryDelay,
	}, workflow.Deps{
		Store:      runStore,
		Rules:      provider,
		RuleEngine: ruleengine.New(logger),
		Fuser:      fuser,
		Documents:  documents.NewRegistry(logger),
		Bureau:     bureauClient,
		Scorer:     scorer.NewHeuristic(logger),
		Reasoner:   reasoner.NewAdvisor(logger),
		Decisions:  decisionLog,
		Notifier:   notify.NewLogNotifier(logger),
		Metrics:    collector,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	pruner, err := retention.NewPruner(cfg.Retention, runStore, logger)
	if err != nil {
		return err
	}
	if err := pruner.Start(); err != nil {
		return err
	}
	defer pruner.Stop()

	checker := health.NewChecker(0)
	checker.Register("rules", func(ctx context.Context) error {
		if provider.Current() == nil || provider.Current().Len() == 0 {
			return fmt.Errorf("no rule catalogue loaded")
		}
		return nil
	})
	checker.Register("store", func(ctx context.Context) error {
		_, err := runStore.GetRun(ctx, "healthcheck")
		if err != nil && !errors.Is(err, workflow.ErrRunNotFound) {
			return err
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", checker.Handler())

	server := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("operational listener started", "address", cfg.Server.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("operational listener failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("listener shutdown failed", "error", err)
	}
	return nil
}
