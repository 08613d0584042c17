package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// configWatcher reloads the config file when it changes on disk.
// The parent directory is watched so editors that replace the file by rename are seen.
type configWatcher struct {
	path     string
	logger   *slog.Logger
	onChange func(Config)
	watcher  *fsnotify.Watcher
}

func newConfigWatcher(path string, logger *slog.Logger, onChange func(Config)) (*configWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch path %s: %w", filepath.Dir(abs), err)
	}
	return &configWatcher{path: abs, logger: logger, onChange: onChange, watcher: fw}, nil
}

// Run blocks until ctx is done.
func (w *configWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	w.logger.Info("config watcher started", slog.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.Any("error", err))
		}
	}
}

func (w *configWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	cfg, err := LoadConfig(w.path)
	if err != nil {
		// A half-written or removed file keeps the previous credentials.
		w.logger.Warn("config reload skipped", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	w.logger.Info("config changed", slog.String("path", w.path), slog.String("op", event.Op.String()))
	w.onChange(cfg)
}
