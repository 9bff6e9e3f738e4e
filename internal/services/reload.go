package services

import (
	"context"
	"path/filepath"
	"time"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/sources"
	"github.com/conneroisu/showcase/internal/watcher"
)

// DefaultDebounce is the quiet period before a batch of file changes
// triggers a reload.
const DefaultDebounce = 200 * time.Millisecond

// LoadStore builds a source table from the configured manifest or root.
func LoadStore(cfg config.SourcesConfig) (*sources.Store, error) {
	if cfg.Manifest != "" {
		return sources.LoadManifest(cfg.Manifest)
	}
	return sources.LoadDir(cfg.Root, cfg.ExcludePatterns)
}

// SourceReloader rebuilds the source table from disk and swaps it into the
// registry. A snapshot is never modified after it is published.
type SourceReloader struct {
	config   config.SourcesConfig
	registry *registry.Registry
	logger   logging.Logger
	watcher  *watcher.FileWatcher
}

// NewSourceReloader creates a reloader for reg.
func NewSourceReloader(cfg config.SourcesConfig, reg *registry.Registry, logger logging.Logger) *SourceReloader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SourceReloader{
		config:   cfg,
		registry: reg,
		logger:   logger.WithComponent("reload"),
	}
}

// Reload loads a fresh snapshot. On failure the current snapshot stays in
// place.
func (r *SourceReloader) Reload(ctx context.Context) error {
	store, err := LoadStore(r.config)
	if err != nil {
		r.logger.Error(ctx, err, "Source reload failed, keeping previous snapshot")
		return err
	}
	r.registry.Swap(store)
	r.logger.Info(ctx, "Sources reloaded", "entries", store.Len())
	return nil
}

// Start watches the source root, or the manifest file, and reloads after
// every debounced batch of changes.
func (r *SourceReloader) Start(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := watcher.NewFileWatcher(debounce, r.logger)
	if err != nil {
		return err
	}

	if r.config.Manifest != "" {
		manifest := filepath.Clean(r.config.Manifest)
		fw.AddFilter(func(path string) bool { return filepath.Clean(path) == manifest })
		err = fw.AddPath(filepath.Dir(manifest))
	} else {
		fw.AddFilter(watcher.SourceFilter(r.config.ExcludePatterns))
		fw.AddFilter(watcher.NoGitFilter)
		fw.AddFilter(watcher.NoNodeModulesFilter)
		err = fw.AddRecursive(r.config.Root)
	}
	if err != nil {
		fw.Stop()
		return err
	}

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		r.logger.Debug(ctx, "Source change detected", "events", len(events), "first", events[0].Path)
		return r.Reload(ctx)
	})

	r.watcher = fw
	return fw.Start(ctx)
}

// Stop stops watching.
func (r *SourceReloader) Stop() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Stop()
}
