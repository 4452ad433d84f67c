package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// WatchFile watches a config file for changes and reloads it into the Store.
// On successful reload the store is updated and onReload (if non-nil) is
// called; on error the old config is kept. Returns a stop function, or an
// error if the watcher cannot be set up.
//
// The parent directory is watched rather than the file so that editors which
// replace the file by rename keep triggering reloads.
func WatchFile(path string, store *Store, logger *slog.Logger, onReload func(*Config)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	target := filepath.Clean(path)
	done := make(chan struct{})

	go func() {
		defer watcher.Close()

		var lastEvent time.Time
		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				now := time.Now()
				if now.Sub(lastEvent) < reloadDebounce {
					continue
				}
				lastEvent = now

				logger.Info("config file change detected", slog.String("path", ev.Name))
				cfg, err := Load(path)
				if err != nil {
					logger.Error("failed to reload config", slog.String("error", err.Error()))
					continue
				}
				store.Update(cfg)
				if onReload != nil {
					onReload(cfg)
				}
				logger.Info("config reloaded", slog.String("format", cfg.Output.Format))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", slog.String("error", err.Error()))
			}
		}
	}()

	return func() { close(done) }, nil
}
