package audit

import (
	"context"
	"fmt"
	"sync"

	"analytica-hq/meridian/pkg/underwriting"
)

// MemoryLog is an in-memory Log for tests and ephemeral deployments.
type MemoryLog struct {
	mu        sync.RWMutex
	decisions []*underwriting.Decision
}

// NewMemoryLog creates an empty in-memory decision log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records the decision.
func (l *MemoryLog) Append(ctx context.Context, d *underwriting.Decision) error {
	if d.ID == "" || d.CaseID == "" {
		return fmt.Errorf("decision requires id and case_id")
	}
	cp := *d
	l.mu.Lock()
	l.decisions = append(l.decisions, &cp)
	l.mu.Unlock()
	return nil
}

// Latest returns the newest record for the case.
func (l *MemoryLog) Latest(ctx context.Context, caseID string) (*underwriting.Decision, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.decisions) - 1; i >= 0; i-- {
		if l.decisions[i].CaseID == caseID {
			cp := *l.decisions[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDecision, caseID)
}

// History returns all records for the case, oldest first.
func (l *MemoryLog) History(ctx context.Context, caseID string) ([]*underwriting.Decision, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*underwriting.Decision
	for _, d := range l.decisions {
		if d.CaseID == caseID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Close is a no-op for the memory log.
func (l *MemoryLog) Close() error { return nil }
