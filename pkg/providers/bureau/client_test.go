package bureau

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch_SimulationIsDeterministic(t *testing.T) {
	c := NewClient(Config{}, nil)
	ctx := context.Background()

	first, err := c.Fetch(ctx, "3174051209880001")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	second, err := c.Fetch(ctx, "3174051209880001")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if first.Score != second.Score || first.TotalDebt != second.TotalDebt {
		t.Errorf("same identity produced different reports: %+v vs %+v", first, second)
	}
	if first.Source != SourceSimulated {
		t.Errorf("source = %q, want %q", first.Source, SourceSimulated)
	}
	if first.Degraded {
		t.Error("simulation-only mode is not a degraded fetch")
	}
	if first.Score < 500 || first.Score > 850 {
		t.Errorf("simulated score %d outside [500, 850]", first.Score)
	}
}

func TestFetch_HighSimulatedScoreHasNoDelinquents(t *testing.T) {
	c := NewClient(Config{}, nil)

	// Scan a handful of identities; any with a score above 650 must
	// report zero delinquencies.
	ids := []string{"1000000000000001", "2000000000000002", "3174051209880001", "9999999999999999"}
	for _, id := range ids {
		snap, err := c.Fetch(context.Background(), id)
		if err != nil {
			t.Fatalf("Fetch(%s) failed: %v", id, err)
		}
		if snap.Score > 650 && snap.DelinquentAccounts != 0 {
			t.Errorf("identity %s: score %d with %d delinquents", id, snap.Score, snap.DelinquentAccounts)
		}
	}
}

func TestFetch_EmptyIdentityRejected(t *testing.T) {
	c := NewClient(Config{}, nil)
	if _, err := c.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty identity reference")
	}
}

func TestFetch_Live(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"credit_score": 710,
			"accounts": map[string]int{
				"total":      4,
				"active":     2,
				"delinquent": 1,
			},
			"outstanding_obligations": map[string]float64{
				"total_debt": 25_000_000,
			},
			"inquiries": map[string]int{
				"last_6_months": 2,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"}, nil)
	snap, err := c.Fetch(context.Background(), "ID-42")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/v1/reports/ID-42" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if snap.Score != 710 || snap.DelinquentAccounts != 1 || snap.TotalDebt != 25_000_000 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Source != SourceLive || snap.Degraded {
		t.Errorf("source = %q degraded = %v, want live", snap.Source, snap.Degraded)
	}
}

func TestFetch_FallbackOnLiveFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, FallbackToSimulation: true}, nil)
	snap, err := c.Fetch(context.Background(), "3174051209880001")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !snap.Degraded {
		t.Error("fallback snapshot should be marked degraded")
	}
	if snap.Source != SourceSimulated {
		t.Errorf("source = %q, want %q", snap.Source, SourceSimulated)
	}
}

func TestFetch_LiveFailureWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, FallbackToSimulation: false}, nil)
	if _, err := c.Fetch(context.Background(), "ID-1"); err == nil {
		t.Fatal("expected live failure to surface when fallback is disabled")
	}
}
