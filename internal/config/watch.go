package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/moonlight/internal/logging"
)

// Watch reloads the config file whenever it is written or replaced and hands
// the result to fn. Malformed or unreadable intermediate states are logged
// and skipped so a half-written file never resets the running settings.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(Config)) error {
	logger = logging.OrDiscard(logger)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors and Save replace the file by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err != nil && !errors.Is(err, ErrInvalid) {
				logger.Warn("config reload skipped", "path", path, "error", err)
				continue
			}
			if err != nil {
				logger.Warn("config reloaded with defaults for invalid values", "path", path, "error", err)
			}
			logger.Debug("config reloaded", "path", path)
			fn(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
