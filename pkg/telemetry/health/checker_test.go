package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheck_AllHealthy(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })
	c.Register("rules", func(ctx context.Context) error { return nil })

	healthy, results := c.Check(context.Background())
	if !healthy {
		t.Error("expected healthy")
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for name, r := range results {
		if !r.Healthy || r.Error != "" {
			t.Errorf("check %s = %+v, want healthy", name, r)
		}
	}
}

func TestCheck_OneFailureReportsUnhealthy(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })
	c.Register("bureau", func(ctx context.Context) error { return errors.New("connection refused") })

	healthy, results := c.Check(context.Background())
	if healthy {
		t.Error("expected unhealthy")
	}
	if results["bureau"].Healthy || results["bureau"].Error != "connection refused" {
		t.Errorf("bureau result = %+v", results["bureau"])
	}
	if !results["store"].Healthy {
		t.Error("healthy checks should still report individually")
	}
}

func TestCheck_TimeoutApplied(t *testing.T) {
	c := NewChecker(10 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	healthy, _ := c.Check(context.Background())
	if healthy {
		t.Error("a check exceeding its timeout should report unhealthy")
	}
}

func TestHandler(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Healthy bool              `json:"healthy"`
		Checks  map[string]Result `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if !body.Healthy || !body.Checks["store"].Healthy {
		t.Errorf("body = %+v", body)
	}

	c.Register("store", func(ctx context.Context) error { return errors.New("locked") })
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 503 {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
