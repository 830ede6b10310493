package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"analytica-hq/meridian/pkg/fusion"
	"analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/rules/source"
	"analytica-hq/meridian/pkg/underwriting"
)

// Config tunes the engine's retry and timeout behaviour.
type Config struct {
	// MaxRetries is the per-step retry budget for recoverable failures.
	MaxRetries int

	// StepTimeout bounds each external collaborator call.
	StepTimeout time.Duration

	// RetryDelay is waited between retry attempts.
	RetryDelay time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  2,
		StepTimeout: 30 * time.Second,
		RetryDelay:  2 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", c.MaxRetries)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("step timeout must be positive, got %s", c.StepTimeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative, got %s", c.RetryDelay)
	}
	return nil
}

// Deps collects the engine's collaborators. Store, Rules, RuleEngine,
// Fuser, Documents, Bureau, Scorer, Reasoner, and Decisions are
// required; Notifier and Metrics default to no-ops.
type Deps struct {
	Store      Store
	Rules      *source.Provider
	RuleEngine *engine.Engine
	Fuser      *fusion.Fuser
	Documents  DocumentService
	Bureau     BureauService
	Scorer     ScorerService
	Reasoner   ReasonerService
	Decisions  DecisionSink
	Notifier   Notifier
	Metrics    Metrics
	Logger     *slog.Logger
}

func (d *Deps) validate() error {
	missing := []string{}
	if d.Store == nil {
		missing = append(missing, "store")
	}
	if d.Rules == nil {
		missing = append(missing, "rules provider")
	}
	if d.RuleEngine == nil {
		missing = append(missing, "rule engine")
	}
	if d.Fuser == nil {
		missing = append(missing, "fuser")
	}
	if d.Documents == nil {
		missing = append(missing, "document service")
	}
	if d.Bureau == nil {
		missing = append(missing, "bureau service")
	}
	if d.Scorer == nil {
		missing = append(missing, "scorer service")
	}
	if d.Reasoner == nil {
		missing = append(missing, "reasoner service")
	}
	if d.Decisions == nil {
		missing = append(missing, "decision sink")
	}
	if len(missing) > 0 {
		return fmt.Errorf("workflow engine missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Engine executes underwriting runs. One Engine serves many concurrent
// runs but never more than one active run per case.
type Engine struct {
	cfg     Config
	deps    Deps
	logger  *slog.Logger
	metrics Metrics

	mu     sync.Mutex
	active map[string]*Handle // caseID -> running handle
	closed bool
	wg     sync.WaitGroup
}

// NewEngine creates a workflow engine.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &Engine{
		cfg:     cfg,
		deps:    deps,
		logger:  deps.Logger.With("component", "workflow"),
		metrics: deps.Metrics,
		active:  make(map[string]*Handle),
	}, nil
}

// Handle tracks one in-flight run.
type Handle struct {
	// RunID identifies the run the handle tracks.
	RunID string

	caseID string
	done   chan struct{}
	cancel chan struct{}

	cancelOnce sync.Once
}

// Done is closed when the run reaches a terminal status.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests cooperative cancellation. The run stops at the next
// step boundary; the step in flight always finishes.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() { close(h.cancel) })
}

// cancelled reports whether cancellation has been requested.
func (h *Handle) cancelled() bool {
	select {
	case <-h.cancel:
		return true
	default:
		return false
	}
}

// Submit starts a run for the case. The case is cloned; the caller's
// copy is never mutated. Returns ErrRunConflict when the case already
// has an active run.
func (e *Engine) Submit(ctx context.Context, c *underwriting.Case) (*Handle, error) {
	if c == nil || c.ID == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}
	c = c.Clone()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if _, busy := e.active[c.ID]; busy {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: case %s", ErrRunConflict, c.ID)
	}
	// Reserve the slot before the store round-trips so two concurrent
	// submits for the same case cannot both pass the check.
	h := &Handle{
		caseID: c.ID,
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	e.active[c.ID] = h
	e.wg.Add(1)
	e.mu.Unlock()

	release := func() {
		e.mu.Lock()
		delete(e.active, c.ID)
		e.mu.Unlock()
		e.wg.Done()
	}

	if prior, err := e.deps.Store.ActiveRunForCase(ctx, c.ID); err == nil && prior != nil {
		release()
		return nil, fmt.Errorf("%w: case %s has run %s in status %s", ErrRunConflict, c.ID, prior.ID, prior.Status)
	} else if err != nil && !errors.Is(err, ErrRunNotFound) {
		release()
		return nil, fmt.Errorf("failed to check for active run: %w", err)
	}

	if err := e.deps.Store.SaveCase(ctx, c); err != nil {
		release()
		return nil, fmt.Errorf("failed to persist case: %w", err)
	}

	now := time.Now().UTC()
	run := &Run{
		ID:          uuid.NewString(),
		CaseID:      c.ID,
		CurrentStep: StepDocuments,
		TotalSteps:  TotalSteps,
		Status:      StatusPending,
		StartedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if err := e.deps.Store.CreateRun(ctx, run); err != nil {
		release()
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	h.RunID = run.ID

	e.logger.Info("run submitted",
		"run_id", run.ID,
		"case_id", c.ID,
	)

	go func() {
		defer release()
		defer close(h.done)
		e.execute(run, c, h)
	}()

	return h, nil
}

// Wait blocks until the run finishes or ctx expires, then returns the
// run's final state.
func (e *Engine) Wait(ctx context.Context, h *Handle) (*Run, error) {
	select {
	case <-h.done:
		return e.deps.Store.GetRun(ctx, h.RunID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run returns the persisted state of a run.
func (e *Engine) Run(ctx context.Context, runID string) (*Run, error) {
	return e.deps.Store.GetRun(ctx, runID)
}

// Cancel requests cancellation of the case's active run. Returns
// ErrRunNotFound when the case has no run in flight.
func (e *Engine) Cancel(caseID string) error {
	e.mu.Lock()
	h, ok := e.active[caseID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no active run for case %s", ErrRunNotFound, caseID)
	}
	h.Cancel()
	return nil
}

// Override appends a manual decision for a case whose latest decision is
// MANUAL_REVIEW. The automatic record is never modified.
func (e *Engine) Override(ctx context.Context, caseID string, status underwriting.DecisionStatus, operator, reason string) (*underwriting.Decision, error) {
	if !status.Valid() || status == underwriting.DecisionManualReview {
		return nil, fmt.Errorf("override status must be APPROVE or REJECT, got %q", status)
	}
	if operator == "" || operator == underwriting.DeciderAuto {
		return nil, fmt.Errorf("override requires an operator identifier")
	}
	if reason == "" {
		return nil, fmt.Errorf("override requires a reason")
	}

	latest, err := e.deps.Decisions.Latest(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest decision for case %s: %w", caseID, err)
	}
	if latest.Status != underwriting.DecisionManualReview {
		return nil, fmt.Errorf("%w: case %s latest decision is %s", ErrNotReviewable, caseID, latest.Status)
	}

	d := &underwriting.Decision{
		ID:             uuid.NewString(),
		CaseID:         caseID,
		Status:         status,
		Reason:         fmt.Sprintf("manual override of decision %s", latest.ID),
		Score:          latest.Score,
		Contribution:   latest.Contribution,
		Reasoner:       latest.Reasoner,
		DecidedBy:      operator,
		OverrideReason: reason,
		DecidedAt:      time.Now().UTC(),
	}
	if err := e.deps.Decisions.Append(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to append override decision: %w", err)
	}

	e.logger.Info("decision overridden",
		"case_id", caseID,
		"previous_decision", latest.ID,
		"new_status", status,
		"operator", operator,
	)
	e.metrics.DecisionIssued(status)
	return d, nil
}

// Close stops accepting new runs and waits for in-flight runs to reach
// a step boundary and finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, h := range e.active {
		h.Cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}
