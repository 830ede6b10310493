package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
)

func createTempLog(t *testing.T) *SQLiteLog {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "decisions.db")
	l, err := NewSQLiteLog(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create decision log: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func decision(id, caseID string, status underwriting.DecisionStatus, decidedAt time.Time) *underwriting.Decision {
	return &underwriting.Decision{
		ID:     id,
		CaseID: caseID,
		RunID:  "run-" + id,
		Status: status,
		Reason: "test decision " + id,
		Score:  0.55,
		Contribution: underwriting.Contribution{
			Rule:     1,
			Score:    0.55,
			Reasoner: 0.7,
		},
		Reasoner: underwriting.ReasonerOpinion{
			Recommendation: underwriting.RecommendReview,
			Confidence:     0.7,
		},
		DecidedBy: underwriting.DeciderAuto,
		DecidedAt: decidedAt,
	}
}

func TestSQLiteLog_AppendAndLatest(t *testing.T) {
	l := createTempLog(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	if err := l.Append(ctx, decision("d1", "CASE-1", underwriting.DecisionManualReview, base)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(ctx, decision("d2", "CASE-1", underwriting.DecisionApprove, base.Add(time.Minute))); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := l.Latest(ctx, "CASE-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got.ID != "d2" {
		t.Errorf("latest = %s, want d2", got.ID)
	}
	if got.Status != underwriting.DecisionApprove {
		t.Errorf("status = %s, want APPROVE", got.Status)
	}
	if got.Contribution.Rule != 1 || got.Contribution.Reasoner != 0.7 {
		t.Errorf("contribution not round-tripped: %+v", got.Contribution)
	}
	if got.Reasoner.Recommendation != underwriting.RecommendReview {
		t.Errorf("reasoner opinion not round-tripped: %+v", got.Reasoner)
	}
}

func TestSQLiteLog_LatestBreaksTiesByInsertionOrder(t *testing.T) {
	l := createTempLog(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	// Same timestamp: the later insert wins, matching append-only
	// override semantics.
	if err := l.Append(ctx, decision("d1", "CASE-2", underwriting.DecisionManualReview, at)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, decision("d2", "CASE-2", underwriting.DecisionReject, at)); err != nil {
		t.Fatal(err)
	}

	got, err := l.Latest(ctx, "CASE-2")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "d2" {
		t.Errorf("latest = %s, want the later insert", got.ID)
	}
}

func TestSQLiteLog_LatestNoDecision(t *testing.T) {
	l := createTempLog(t)
	if _, err := l.Latest(context.Background(), "CASE-NONE"); !errors.Is(err, ErrNoDecision) {
		t.Errorf("err = %v, want ErrNoDecision", err)
	}
}

func TestSQLiteLog_HistoryOldestFirst(t *testing.T) {
	l := createTempLog(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		d := decision(fmt.Sprintf("d%d", i), "CASE-3", underwriting.DecisionManualReview, base.Add(time.Duration(i)*time.Minute))
		if err := l.Append(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	history, err := l.History(ctx, "CASE-3")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i, d := range history {
		if want := fmt.Sprintf("d%d", i); d.ID != want {
			t.Errorf("history[%d] = %s, want %s", i, d.ID, want)
		}
	}
}

func TestSQLiteLog_OverrideRecordRoundTrip(t *testing.T) {
	l := createTempLog(t)
	ctx := context.Background()

	auto := decision("auto", "CASE-4", underwriting.DecisionManualReview, time.Now().UTC())
	if err := l.Append(ctx, auto); err != nil {
		t.Fatal(err)
	}

	override := decision("override", "CASE-4", underwriting.DecisionApprove, time.Now().UTC().Add(time.Second))
	override.DecidedBy = "underwriter-3"
	override.OverrideReason = "collateral re-appraised"
	override.RunID = ""
	if err := l.Append(ctx, override); err != nil {
		t.Fatal(err)
	}

	got, err := l.Latest(ctx, "CASE-4")
	if err != nil {
		t.Fatal(err)
	}
	if got.DecidedBy != "underwriter-3" || got.OverrideReason != "collateral re-appraised" {
		t.Errorf("override fields not round-tripped: %+v", got)
	}
	if got.RunID != "" {
		t.Errorf("override run_id = %q, want empty", got.RunID)
	}
}

func TestSQLiteLog_AppendRequiresIdentifiers(t *testing.T) {
	l := createTempLog(t)
	d := decision("", "CASE-5", underwriting.DecisionApprove, time.Now())
	if err := l.Append(context.Background(), d); err == nil {
		t.Error("expected append without id to fail")
	}
	d = decision("d1", "", underwriting.DecisionApprove, time.Now())
	if err := l.Append(context.Background(), d); err == nil {
		t.Error("expected append without case_id to fail")
	}
}

func TestSQLiteLog_ViolationsRoundTrip(t *testing.T) {
	l := createTempLog(t)
	ctx := context.Background()

	d := decision("d1", "CASE-6", underwriting.DecisionReject, time.Now().UTC())
	d.Violations = []string{"Maximum DTI Ratio", "No Active Delinquencies"}
	d.Contribution.Rule = 0
	if err := l.Append(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := l.Latest(ctx, "CASE-6")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Violations) != 2 || got.Violations[0] != "Maximum DTI Ratio" {
		t.Errorf("violations not round-tripped: %v", got.Violations)
	}
}

func TestMemoryLog(t *testing.T) {
	l := NewMemoryLog()
	ctx := context.Background()

	if _, err := l.Latest(ctx, "CASE-M"); !errors.Is(err, ErrNoDecision) {
		t.Errorf("err = %v, want ErrNoDecision", err)
	}

	if err := l.Append(ctx, decision("d1", "CASE-M", underwriting.DecisionManualReview, time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, decision("d2", "CASE-M", underwriting.DecisionApprove, time.Now())); err != nil {
		t.Fatal(err)
	}

	got, err := l.Latest(ctx, "CASE-M")
	if err != nil || got.ID != "d2" {
		t.Errorf("Latest = %v, %v; want d2", got, err)
	}

	history, err := l.History(ctx, "CASE-M")
	if err != nil || len(history) != 2 {
		t.Fatalf("History = %v, %v; want 2 records", history, err)
	}
	if history[0].ID != "d1" {
		t.Error("history should be oldest first")
	}

	// The log hands out copies.
	got.Status = underwriting.DecisionReject
	again, _ := l.Latest(ctx, "CASE-M")
	if again.Status != underwriting.DecisionApprove {
		t.Error("log handed out a shared reference")
	}
}
