package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. Return nil when healthy.
type CheckFunc func(ctx context.Context) error

// Checker runs registered checks on demand. Safe for concurrent use.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	// Timeout bounds each individual check.
	timeout time.Duration
}

// NewChecker creates a checker. timeout <= 0 defaults to 2 seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// Register adds a named check, replacing any previous one.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	c.checks[name] = fn
	c.mu.Unlock()
}

// Result is one check's outcome.
type Result struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Check runs every registered check and reports per-check results.
func (c *Checker) Check(ctx context.Context) (bool, map[string]Result) {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	healthy := true
	results := make(map[string]Result, len(checks))
	for name, fn := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(checkCtx)
		cancel()
		if err != nil {
			healthy = false
			results[name] = Result{Error: err.Error()}
			continue
		}
		results[name] = Result{Healthy: true}
	}
	return healthy, results
}

// Handler serves the readiness endpoint: 200 when every check passes,
// 503 otherwise, with per-check detail in the body.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthy, results := c.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"healthy": healthy,
			"checks":  results,
		})
	})
}

// LivenessHandler always reports 200; the process is up.
func LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"alive"}`))
	})
}
