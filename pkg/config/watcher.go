package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aulanota/insight/pkg/logx"
)

// Watcher reloads the configuration file into a Provider when it changes on
// disk, so threshold edits take effect without restarting insightd.
type Watcher struct {
	path     string
	provider *Provider
	logger   *logx.Logger

	// Editors often emit several write events per save; coalesce them.
	debounce time.Duration
}

// NewWatcher creates a watcher for path feeding the given provider
func NewWatcher(path string, provider *Provider, logger *logx.Logger) *Watcher {
	return &Watcher{
		path:     path,
		provider: provider,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
}

// Run watches the configuration file until ctx is cancelled. It watches the
// parent directory so atomic rename-based saves are picked up too.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("Watching configuration file", "path", w.path)

	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("Configuration reload failed, keeping current", "error", err)
				continue
			}
			w.provider.Replace(cfg)
			w.logger.Info("Configuration reloaded", "path", w.path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Configuration watcher error", "error", err)
		}
	}
}
