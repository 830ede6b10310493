package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
	"analytica-hq/meridian/pkg/workflow"
)

// MemoryStore is an in-memory Store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]*workflow.Run
	cases map[string]*underwriting.Case
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]*workflow.Run),
		cases: make(map[string]*underwriting.Case),
	}
}

// CreateRun stores a new run.
func (s *MemoryStore) CreateRun(ctx context.Context, run *workflow.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// UpdateRun applies the update if the stored version is exactly one
// behind the caller's copy.
func (s *MemoryStore) UpdateRun(ctx context.Context, run *workflow.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.runs[run.ID]
	if !ok {
		return workflow.ErrRunNotFound
	}
	if stored.Version != run.Version-1 {
		return fmt.Errorf("%w: run %s stored version %d, expected %d",
			workflow.ErrVersionConflict, run.ID, stored.Version, run.Version-1)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// GetRun returns a copy of the run.
func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*workflow.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, workflow.ErrRunNotFound
	}
	return cloneRun(run), nil
}

// ActiveRunForCase returns the case's non-terminal run, if any.
func (s *MemoryStore) ActiveRunForCase(ctx context.Context, caseID string) (*workflow.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.runs {
		if run.CaseID == caseID && !run.Status.Terminal() {
			return cloneRun(run), nil
		}
	}
	return nil, workflow.ErrRunNotFound
}

// SaveCase stores the case snapshot, replacing any previous one.
func (s *MemoryStore) SaveCase(ctx context.Context, c *underwriting.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c.Clone()
	return nil
}

// GetCase returns a copy of the case.
func (s *MemoryStore) GetCase(ctx context.Context, caseID string) (*underwriting.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, workflow.ErrCaseNotFound
	}
	return c.Clone(), nil
}

// PruneTerminal deletes terminal runs last updated before cutoff.
func (s *MemoryStore) PruneTerminal(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned int64
	for id, run := range s.runs {
		if run.Status.Terminal() && run.UpdatedAt.Before(cutoff) {
			delete(s.runs, id)
			pruned++
		}
	}
	return pruned, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

func cloneRun(run *workflow.Run) *workflow.Run {
	cp := *run
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
