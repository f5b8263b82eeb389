package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a configuration file whenever it is written or replaced.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current *Config
}

// Watch loads path and calls onChange with every later valid version of
// it until ctx is done or Close is called. Invalid versions are logged and
// skipped. The parent directory is watched so editors that save by rename
// are seen too.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{path: filepath.Clean(path), logger: logger, watcher: fsw, current: cfg}
	logger.Info("watching config file for changes", slog.String("path", path))

	go w.loop(ctx, onChange)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, onChange func(*Config)) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("config watch stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(w.path)
			if err != nil {
				w.logger.Error("failed to reload config",
					slog.String("error", err.Error()),
					slog.String("path", w.path))
				continue
			}

			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()

			w.logger.Info("config file changed, reloaded", slog.String("path", w.path))
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watch error", slog.String("error", err.Error()))
		}
	}
}

// Current returns the most recently loaded valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
