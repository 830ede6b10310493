package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"analytica-hq/meridian/pkg/rules"
)

// FileSource loads rule catalogues from YAML files on disk. The path can
// be a single file or a directory; for a directory every .yaml and .yml
// file is parsed and the rules are merged into one catalogue.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-backed catalogue source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "rules.source"),
	}
}

// Load reads and validates the catalogue from the configured path.
func (s *FileSource) Load(ctx context.Context) (*rules.RuleSet, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalogue path %q: %w", s.path, err)
	}

	if !info.IsDir() {
		rs, err := s.loadFile(s.path)
		if err != nil {
			return nil, err
		}
		s.logger.Info("loaded rule catalogue",
			"path", s.path,
			"catalogue", rs.Name,
			"rule_count", rs.Len(),
		)
		return rs, nil
	}

	merged := &rules.RuleSet{Name: "catalogue", Version: "merged"}
	err = filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isCatalogueFile(path) {
			return nil
		}
		rs, err := s.loadFile(path)
		if err != nil {
			return fmt.Errorf("catalogue file %q: %w", path, err)
		}
		if merged.Name == "catalogue" && rs.Name != "" {
			merged.Name = rs.Name
			merged.Version = rs.Version
		}
		merged.Rules = append(merged.Rules, rs.Rules...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalogue directory %q: %w", s.path, err)
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid merged catalogue: %w", err)
	}

	s.logger.Info("loaded rule catalogue",
		"path", s.path,
		"catalogue", merged.Name,
		"rule_count", merged.Len(),
	)
	return merged, nil
}

// loadFile parses a single catalogue file.
func (s *FileSource) loadFile(path string) (*rules.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file %q: %w", path, err)
	}
	return rules.ParseRuleSet(data)
}

// Watch watches the catalogue path with fsnotify and forwards change
// events. Only catalogue files produce events; editor temp files and
// unrelated writes are filtered out.
func (s *FileSource) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalogue watcher: %w", err)
	}

	// Watch the directory containing the path so single-file catalogues
	// survive rename-based atomic writes.
	watchPath := s.path
	if info, err := os.Stat(s.path); err == nil && !info.IsDir() {
		watchPath = filepath.Dir(s.path)
	}
	if err := watcher.Add(watchPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", watchPath, err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !s.relevant(ev.Name) {
					continue
				}
				var t EventType
				switch {
				case ev.Op.Has(fsnotify.Create):
					t = EventCreated
				case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Rename):
					t = EventModified
				case ev.Op.Has(fsnotify.Remove):
					t = EventDeleted
				default:
					continue
				}
				select {
				case events <- Event{Type: t, Path: ev.Name}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case events <- Event{Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// relevant reports whether a change to name should trigger a reload.
func (s *FileSource) relevant(name string) bool {
	if !isCatalogueFile(name) {
		return false
	}
	if info, err := os.Stat(s.path); err == nil && !info.IsDir() {
		return filepath.Clean(name) == filepath.Clean(s.path)
	}
	return true
}

func isCatalogueFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
