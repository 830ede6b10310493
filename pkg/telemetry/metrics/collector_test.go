package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"analytica-hq/meridian/pkg/underwriting"
	"analytica-hq/meridian/pkg/workflow"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)

	c.RetryScheduled("bureau")
	c.RetryScheduled("bureau")
	c.RunFinished(workflow.StatusCompleted)
	c.DecisionIssued(underwriting.DecisionApprove)
	c.FindingsRecorded(2, 1, 3)
	c.CatalogueReloaded()

	if got := testutil.ToFloat64(c.stepRetries.WithLabelValues("bureau")); got != 2 {
		t.Errorf("step retries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.runsFinished.WithLabelValues("COMPLETED")); got != 1 {
		t.Errorf("runs finished = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.decisions.WithLabelValues("APPROVE")); got != 1 {
		t.Errorf("decisions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.findings.WithLabelValues("reject")); got != 2 {
		t.Errorf("reject findings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.findings.WithLabelValues("warn")); got != 3 {
		t.Errorf("warn findings = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.catalogueReload); got != 1 {
		t.Errorf("catalogue reloads = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	c.RetryScheduled("bureau")
	c.RunFinished(workflow.StatusFailed)
	c.FindingsRecorded(1, 1, 1)

	if got := testutil.ToFloat64(c.stepRetries.WithLabelValues("bureau")); got != 0 {
		t.Errorf("disabled collector recorded %v retries", got)
	}
	if got := testutil.ToFloat64(c.runsFinished.WithLabelValues("FAILED")); got != 0 {
		t.Errorf("disabled collector recorded %v finished runs", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)
	c.ObserveStep("scoring", "ok", 40*time.Millisecond)
	c.RunFinished(workflow.StatusCompleted)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"meridian_workflow_step_duration_seconds",
		"meridian_workflow_runs_finished_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition output missing %s", want)
		}
	}
}
