package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mentatproj/mentat/pkg/logger"
	"github.com/mentatproj/mentat/pkg/utils/safego"
)

const watchDebounce = 1500 * time.Millisecond

// ConfigWatcher hot-reloads the MCP configuration file into a registry.
// Editors replace files instead of writing in place, so the watch is on
// the parent directory filtered by name.
type ConfigWatcher struct {
	registry Registry
	path     string

	watcher *fsnotify.Watcher
	closeCh chan struct{}
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(registry Registry, path string) *ConfigWatcher {
	return &ConfigWatcher{
		registry: registry,
		path:     path,
		closeCh:  make(chan struct{}),
	}
}

// Start begins watching. Reloads are debounced so a burst of editor
// events triggers one reload.
func (w *ConfigWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = watcher

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(w.path), err)
	}

	target := filepath.Base(w.path)
	safego.Go(context.Background(), func() {
		timer := time.NewTimer(0)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer.Reset(watchDebounce)
				}
			case <-timer.C:
				w.reload()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-w.closeCh:
				return
			}
		}
	})

	logger.Info("[MCP] config watcher started on %s", w.path)
	return nil
}

func (w *ConfigWatcher) reload() {
	cfg, err := LoadMCPConfig(w.path)
	if err != nil {
		logger.Error("[MCP] config reload failed: %v", err)
		return
	}
	w.registry.Reload(cfg)
	logger.Info("[MCP] config reloaded: %d servers available", len(cfg.MCPServers))
}

// Stop ends the watch.
func (w *ConfigWatcher) Stop() {
	close(w.closeCh)
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}
