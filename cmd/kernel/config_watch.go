package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentmesh/swarmkernel/internal/kernel/config"
	"github.com/agentmesh/swarmkernel/internal/kernel/dispatch"
)

// applyDispatcherConfig installs cfg's extra blocked-command patterns
// into the dispatcher's runtime blocklist.
func applyDispatcherConfig(cfg config.DispatcherConfig) error {
	return dispatch.SetExtraBlocklist(cfg.ExtraBlockedCommands)
}

// watchConfig watches configPath for changes and re-applies the
// dispatcher's hot-reloadable settings (the extra command blocklist) on
// every write, without restarting the server. Other settings (server
// address, provider defaults) require a restart to take effect.
func watchConfig(configPath string, logger *slog.Logger, stop <-chan struct{}) {
	if configPath == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("config hot-reload disabled: could not start watcher", "error", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("config hot-reload disabled: could not watch directory", "dir", dir, "error", err)
		return
	}

	var debounce *time.Timer
	reload := func() {
		cfg, err := config.Load(configPath)
		if err != nil {
			logger.Warn("config reload failed, keeping previous settings", "error", err)
			return
		}
		if err := applyDispatcherConfig(cfg.Dispatcher); err != nil {
			logger.Warn("config reload: invalid blocklist pattern, keeping previous settings", "error", err)
			return
		}
		logger.Info("config reloaded", "path", configPath)
	}

	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(config.ReloadDebounce(), reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
