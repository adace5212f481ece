package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/riskdash/riskdash/pkg/types"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// records each time the file is written or replaced. It runs until ctx is
// cancelled.
//
// The parent directory is watched rather than the file, so atomic saves
// (write a temp file, rename it over path) keep being seen.
//
// If a reload fails (invalid YAML or a record out of range), the error is
// logged and onChange is not called, so the previous set remains active.
func Watch(ctx context.Context, path string, onChange func([]types.ComponentRecord)) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	slog.Info("registry: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			records, err := Load(path)
			if err != nil {
				slog.Error("registry: reload failed, keeping previous components",
					"path", path, "err", err)
				continue
			}

			slog.Info("registry: reloaded", "path", path, "components", len(records))
			onChange(records)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("registry: watcher error", "err", err)
		}
	}
}
