package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	ruleengine "analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/underwriting"
)

// Resume restarts execution of a non-terminal run from its last
// persisted step, typically after a process restart. The case's active
// slot must be free.
func (e *Engine) Resume(ctx context.Context, runID string) (*Handle, error) {
	run, err := e.deps.Store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status.Terminal() {
		return nil, fmt.Errorf("run %s is already %s", runID, run.Status)
	}
	c, err := e.deps.Store.GetCase(ctx, run.CaseID)
	if err != nil {
		return nil, err
	}
	if run.State.Bureau != nil {
		c.Bureau = run.State.Bureau
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if _, busy := e.active[run.CaseID]; busy {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: case %s", ErrRunConflict, run.CaseID)
	}
	h := &Handle{
		RunID:  run.ID,
		caseID: run.CaseID,
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	e.active[run.CaseID] = h
	e.wg.Add(1)
	e.mu.Unlock()

	e.logger.Info("run resumed",
		"run_id", run.ID,
		"case_id", run.CaseID,
		"step", run.CurrentStep,
	)

	go func() {
		defer func() {
			e.mu.Lock()
			delete(e.active, run.CaseID)
			e.mu.Unlock()
			e.wg.Done()
		}()
		defer close(h.done)
		e.execute(run, c, h)
	}()

	return h, nil
}

// runState carries in-process state that does not survive a restart.
type runState struct {
	decision *underwriting.Decision
}

// execute drives the run from its current step to a terminal status.
// Persistence uses a background context: once a run is accepted it
// finishes or fails on its own terms, not the submitter's.
func (e *Engine) execute(run *Run, c *underwriting.Case, h *Handle) {
	ctx := context.Background()
	rt := &runState{}

	run.Status = StatusRunning
	if err := e.persist(ctx, run); err != nil {
		e.fail(ctx, run, err)
		return
	}
	e.notify(run, "")

	for run.CurrentStep <= run.TotalSteps {
		if h.cancelled() {
			e.fail(ctx, run, ErrCancelled)
			return
		}

		step := run.CurrentStep
		started := time.Now()
		err := e.runStep(ctx, step, run, c, rt)
		elapsed := time.Since(started)

		switch {
		case err == nil:
			e.metrics.ObserveStep(StepName(step), "ok", elapsed)

		case recoverable(step, err) && run.RetryCount < e.cfg.MaxRetries:
			e.metrics.ObserveStep(StepName(step), "retry", elapsed)
			if retryErr := e.scheduleRetry(ctx, run, h, step, err); retryErr != nil {
				e.fail(ctx, run, retryErr)
				return
			}
			continue

		case step == StepReasoner:
			// The opinion is advisory; once the retry budget is spent
			// the degraded signal stands in and the run goes on.
			opinion := underwriting.DegradedOpinion()
			run.State.Opinion = &opinion
			e.metrics.ObserveStep(StepName(step), "degraded", elapsed)
			e.logger.Warn("reasoner unavailable, substituting degraded opinion",
				"run_id", run.ID,
				"case_id", c.ID,
				"error", err,
			)

		default:
			e.metrics.ObserveStep(StepName(step), "error", elapsed)
			e.fail(ctx, run, err)
			return
		}

		run.RetryCount = 0
		if step < run.TotalSteps {
			run.CurrentStep = step + 1
		}
		if err := e.persist(ctx, run); err != nil {
			e.fail(ctx, run, err)
			return
		}
		e.notify(run, "")

		if step == run.TotalSteps {
			break
		}
	}

	now := time.Now().UTC()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	if err := e.persist(ctx, run); err != nil {
		e.fail(ctx, run, err)
		return
	}
	e.notify(run, "")
	e.metrics.RunFinished(StatusCompleted)

	e.logger.Info("run completed",
		"run_id", run.ID,
		"case_id", run.CaseID,
		"duration", now.Sub(run.StartedAt),
	)
}

// scheduleRetry persists the RETRY status, waits out the delay, and
// flips the run back to RUNNING. A cancellation while waiting surfaces
// as ErrCancelled; a persistence failure surfaces as-is so the caller
// records the real cause.
func (e *Engine) scheduleRetry(ctx context.Context, run *Run, h *Handle, step int, cause error) error {
	run.RetryCount++
	run.Status = StatusRetry
	if err := e.persist(ctx, run); err != nil {
		return err
	}
	e.notify(run, cause.Error())
	e.metrics.RetryScheduled(StepName(step))

	e.logger.Warn("step failed, retry scheduled",
		"run_id", run.ID,
		"step", step,
		"step_name", StepName(step),
		"attempt", run.RetryCount,
		"max_retries", e.cfg.MaxRetries,
		"error", cause,
	)

	timer := time.NewTimer(e.cfg.RetryDelay)
	defer timer.Stop()
	select {
	case <-h.cancel:
		return ErrCancelled
	case <-timer.C:
	}

	run.Status = StatusRunning
	return e.persist(ctx, run)
}

// runStep executes one pipeline step against the run's case.
func (e *Engine) runStep(ctx context.Context, step int, run *Run, c *underwriting.Case, rt *runState) error {
	switch step {
	case StepDocuments:
		return e.stepDocuments(ctx, c)
	case StepExtraction:
		return e.stepExtraction(ctx, run, c)
	case StepBureau:
		return e.stepBureau(ctx, run, c)
	case StepScoring:
		return e.stepScoring(ctx, run, c)
	case StepReasoner:
		return e.stepReasoner(ctx, run, c)
	case StepCompliance:
		return e.stepCompliance(run, c)
	case StepFusion:
		return e.stepFusion(ctx, run, rt)
	case StepFinalize:
		return e.stepFinalize(ctx, run, c, rt)
	}
	return fmt.Errorf("unknown step %d", step)
}

// fail records a terminal failure. The failing step stays in
// CurrentStep so operators can see exactly where the run stopped.
func (e *Engine) fail(ctx context.Context, run *Run, cause error) {
	now := time.Now().UTC()
	run.Status = StatusFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now
	if err := e.persist(ctx, run); err != nil {
		e.logger.Error("failed to persist terminal failure",
			"run_id", run.ID,
			"cause", cause,
			"error", err,
		)
	}
	e.notify(run, cause.Error())
	e.metrics.RunFinished(StatusFailed)

	e.logger.Error("run failed",
		"run_id", run.ID,
		"case_id", run.CaseID,
		"step", run.CurrentStep,
		"step_name", StepName(run.CurrentStep),
		"error", cause,
	)
}

// persist bumps the version and writes the run. The bump is undone on
// failure so the next write does not run ahead of the stored version.
func (e *Engine) persist(ctx context.Context, run *Run) error {
	run.Version++
	run.UpdatedAt = time.Now().UTC()
	if err := e.deps.Store.UpdateRun(ctx, run); err != nil {
		run.Version--
		return fmt.Errorf("failed to persist run %s at step %d: %w", run.ID, run.CurrentStep, err)
	}
	return nil
}

// notify emits a step event. Notifier implementations must not block.
func (e *Engine) notify(run *Run, errMsg string) {
	e.deps.Notifier.StepChanged(StepEvent{
		RunID:    run.ID,
		CaseID:   run.CaseID,
		Step:     run.CurrentStep,
		StepName: StepName(run.CurrentStep),
		Status:   run.Status,
		Progress: run.Progress(),
		Error:    errMsg,
		At:       time.Now().UTC(),
	})
}

// stepDocuments rejects structurally invalid applications and checks
// that every mandatory document is present. Failures here are always
// terminal: incomplete data does not improve with retries.
func (e *Engine) stepDocuments(ctx context.Context, c *underwriting.Case) error {
	switch {
	case c.IdentityRef == "":
		return &ValidationError{Field: "identity_ref", Reason: "is required"}
	case c.Applicant.Age <= 0:
		return &ValidationError{Field: "applicant.age", Reason: "must be positive"}
	case c.Applicant.MonthlyIncome < 0:
		return &ValidationError{Field: "applicant.monthly_income", Reason: "cannot be negative"}
	case c.Loan.Amount <= 0:
		return &ValidationError{Field: "loan.amount", Reason: "must be positive"}
	case c.Loan.TermMonths <= 0:
		return &ValidationError{Field: "loan.term_months", Reason: "must be positive"}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	ok, missing, err := e.deps.Documents.Sufficiency(callCtx, c.ID)
	if err != nil {
		return e.collaboratorError(StepDocuments, "documents", false, err)
	}
	if !ok {
		return fmt.Errorf("%w: missing documents: %v", ErrDataIncomplete, missing)
	}
	return nil
}

// stepExtraction aggregates the financial metrics extracted from the
// documents. An extraction failure falls back to the declared figures.
func (e *Engine) stepExtraction(ctx context.Context, run *Run, c *underwriting.Case) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	metrics, err := e.deps.Documents.Metrics(callCtx, c.ID)
	if err != nil {
		e.logger.Warn("financial metrics extraction failed, using declared figures",
			"run_id", run.ID,
			"case_id", c.ID,
			"error", err,
		)
		return nil
	}
	c.Financials = metrics
	if err := e.deps.Store.SaveCase(ctx, c); err != nil {
		return fmt.Errorf("failed to persist extracted financials: %w", err)
	}
	return nil
}

// stepBureau fetches the credit snapshot. A degraded snapshot is a
// success; the bureau chose the fallback deliberately.
func (e *Engine) stepBureau(ctx context.Context, run *Run, c *underwriting.Case) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	snapshot, err := e.deps.Bureau.Fetch(callCtx, c.IdentityRef)
	if err != nil {
		return e.collaboratorError(StepBureau, "bureau", true, err)
	}
	if snapshot.Degraded {
		e.logger.Warn("bureau returned degraded snapshot",
			"run_id", run.ID,
			"case_id", c.ID,
			"source", snapshot.Source,
		)
	}
	c.Bureau = snapshot
	run.State.Bureau = snapshot
	return nil
}

// stepScoring obtains the probability of default.
func (e *Engine) stepScoring(ctx context.Context, run *Run, c *underwriting.Case) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	result, err := e.deps.Scorer.Score(callCtx, c)
	if err != nil {
		return e.collaboratorError(StepScoring, "scorer", true, err)
	}
	if result.ProbabilityOfDefault < 0 || result.ProbabilityOfDefault > 1 {
		return &ServiceError{
			Step:    StepScoring,
			Service: "scorer",
			Cause:   fmt.Errorf("probability of default %v outside [0,1]", result.ProbabilityOfDefault),
		}
	}
	run.State.Score = result
	return nil
}

// stepReasoner obtains the advisory opinion. Failures are retried like
// any external call; the engine degrades the signal only once the
// budget is exhausted.
func (e *Engine) stepReasoner(ctx context.Context, run *Run, c *underwriting.Case) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	opinion, err := e.deps.Reasoner.Analyze(callCtx, c)
	if err != nil {
		return e.collaboratorError(StepReasoner, "reasoner", true, err)
	}
	run.State.Opinion = &opinion
	return nil
}

// stepCompliance featurizes the case and evaluates the active rule
// catalogue. Purely local; any failure here is terminal.
func (e *Engine) stepCompliance(run *Run, c *underwriting.Case) error {
	features := ruleengine.Featurize(c)
	verdict := e.deps.RuleEngine.Evaluate(e.deps.Rules.Current(), features)
	run.State.Features = features
	run.State.Verdict = verdict
	e.metrics.FindingsRecorded(len(verdict.Violations), len(verdict.Flags), len(verdict.Warnings))
	return nil
}

// stepFusion fuses the signals and durably appends the decision before
// the run can advance.
func (e *Engine) stepFusion(ctx context.Context, run *Run, rt *runState) error {
	if run.State.Verdict == nil || run.State.Score == nil || run.State.Opinion == nil {
		return fmt.Errorf("fusion inputs incomplete for run %s", run.ID)
	}

	score := 1 - run.State.Score.ProbabilityOfDefault
	d := e.deps.Fuser.Fuse(score, *run.State.Opinion, run.State.Verdict)
	d.ID = uuid.NewString()
	d.CaseID = run.CaseID
	d.RunID = run.ID

	if err := e.deps.Decisions.Append(ctx, d); err != nil {
		return &ServiceError{Step: StepFusion, Service: "decision log", Cause: err}
	}
	run.State.DecisionID = d.ID
	rt.decision = d
	e.metrics.DecisionIssued(d.Status)

	e.logger.Info("decision recorded",
		"run_id", run.ID,
		"case_id", run.CaseID,
		"decision_id", d.ID,
		"status", d.Status,
		"score", d.Score,
	)
	return nil
}

// stepFinalize renders the credit memo. The decision was persisted at
// step 7; a failure here fails the run but the decision stands.
func (e *Engine) stepFinalize(ctx context.Context, run *Run, c *underwriting.Case, rt *runState) error {
	d := rt.decision
	if d == nil {
		var err error
		d, err = e.deps.Decisions.Latest(ctx, run.CaseID)
		if err != nil {
			return &ServiceError{Step: StepFinalize, Service: "decision log", Cause: err}
		}
	}
	run.State.Memo = BuildMemo(run, c, d)
	return nil
}

// collaboratorError classifies a collaborator failure, distinguishing
// timeouts from service errors.
func (e *Engine) collaboratorError(step int, service string, recoverableSvc bool, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Step: step, Timeout: e.cfg.StepTimeout}
	}
	return &ServiceError{Step: step, Service: service, Recoverable: recoverableSvc, Cause: err}
}
