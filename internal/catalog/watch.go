package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/logging"
)

// WatchOptions configures Watch
type WatchOptions struct {
	// Debounce collapses bursts of file events (default: 250ms)
	Debounce time.Duration

	// Logger for reload events (optional)
	Logger *zap.Logger
}

// Watch reloads the catalog at path whenever it changes and passes every
// successfully loaded catalog to onChange. Invalid files are logged and
// skipped, the last good catalog stays in effect. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, opts WatchOptions, onChange func(*Catalog)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	logger := logging.Component(opts.Logger, "catalog-watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	target := filepath.Clean(path)
	logger.Info("Started watching command catalog", zap.String("path", target))

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping catalog watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(opts.Debounce)

		case <-timer.C:
			c, err := Load(path)
			if err != nil {
				logger.Warn("Catalog reload failed, keeping previous commands", zap.Error(err))
				continue
			}
			logger.Info("Catalog reloaded", zap.Int("commandCount", c.Len()))
			onChange(c)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))
		}
	}
}
