package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the preferences file whenever it changes and passes the new
// preferences to onChange. It blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors and Save
// that replace the file by rename are picked up. It is created when missing,
// so a preferences file written later is still seen.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(Preferences)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}

	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			prefs, err := Load(path)
			if err != nil {
				logger.Warn("ignoring invalid preferences", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Debug("preferences reloaded", zap.String("path", path))
			onChange(prefs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("preferences watcher error", zap.Error(err))
		}
	}
}
