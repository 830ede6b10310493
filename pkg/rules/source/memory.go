package source

import (
	"context"
	"errors"

	"analytica-hq/meridian/pkg/rules"
)

// MemorySource serves a fixed in-memory catalogue. Used in tests and when
// embedding the built-in default catalogue.
type MemorySource struct {
	ruleSet *rules.RuleSet
}

// NewMemorySource creates a source serving rs.
func NewMemorySource(rs *rules.RuleSet) *MemorySource {
	return &MemorySource{ruleSet: rs}
}

// Load returns the configured catalogue after validating it.
func (s *MemorySource) Load(ctx context.Context) (*rules.RuleSet, error) {
	if s.ruleSet == nil {
		return nil, errors.New("memory source has no catalogue")
	}
	if err := s.ruleSet.Validate(); err != nil {
		return nil, err
	}
	return s.ruleSet, nil
}

// Watch returns a channel that never delivers events and closes when ctx
// is cancelled.
func (s *MemorySource) Watch(ctx context.Context) (<-chan Event, error) {
	events := make(chan Event)
	go func() {
		<-ctx.Done()
		close(events)
	}()
	return events, nil
}
