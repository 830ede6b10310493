package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"analytica-hq/meridian/pkg/rules"
)

// Provider holds the current validated catalogue and keeps it fresh by
// watching its Source. Reads are lock-cheap; reloads replace the
// catalogue atomically. A reload that fails validation is rejected and
// the previous catalogue stays in effect.
type Provider struct {
	source Source
	logger *slog.Logger

	mu       sync.RWMutex
	current  *rules.RuleSet
	onReload func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProvider loads the initial catalogue from src and, when watch is
// true, starts watching for changes. An empty or invalid initial
// catalogue is a configuration error and fails construction.
func NewProvider(src Source, watch bool, logger *slog.Logger) (*Provider, error) {
	if src == nil {
		return nil, fmt.Errorf("catalogue source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		source: src,
		logger: logger.With("component", "rules.provider"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	if err := p.reload(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load initial catalogue: %w", err)
	}

	if watch {
		if err := p.startWatching(ctx); err != nil {
			cancel()
			return nil, err
		}
	}

	return p, nil
}

// Current returns the catalogue in effect. The returned set must be
// treated as read-only.
func (p *Provider) Current() *rules.RuleSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// OnReload registers a callback invoked after every successful reload,
// the initial load included.
func (p *Provider) OnReload(fn func()) {
	p.mu.Lock()
	p.onReload = fn
	p.mu.Unlock()
}

// Reload forces a reload from the source.
func (p *Provider) Reload(ctx context.Context) error {
	return p.reload(ctx)
}

// Close stops the watcher goroutine.
func (p *Provider) Close() error {
	p.cancel()
	p.wg.Wait()
	return nil
}

// reload loads, validates, and atomically swaps the catalogue.
func (p *Provider) reload(ctx context.Context) error {
	rs, err := p.source.Load(ctx)
	if err != nil {
		return err
	}
	if err := rs.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = rs
	hook := p.onReload
	p.mu.Unlock()
	if hook != nil {
		hook()
	}

	p.logger.Info("rule catalogue in effect",
		"catalogue", rs.Name,
		"version", rs.Version,
		"rule_count", rs.Len(),
	)
	return nil
}

// startWatching consumes source events and reloads on each change.
func (p *Provider) startWatching(ctx context.Context) error {
	events, err := p.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start catalogue watcher: %w", err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for ev := range events {
			if ev.Err != nil {
				p.logger.Error("catalogue watcher error", "error", ev.Err)
				continue
			}
			p.logger.Info("catalogue changed, reloading",
				"type", ev.Type,
				"path", ev.Path,
			)
			if err := p.reload(ctx); err != nil {
				p.logger.Error("catalogue reload rejected, previous catalogue stays in effect",
					"error", err,
					"path", ev.Path,
				)
			}
		}
	}()
	return nil
}
