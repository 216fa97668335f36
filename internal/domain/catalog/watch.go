package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the burst of events editors produce on save
const reloadDelay = 150 * time.Millisecond

// Watch reloads the catalog whenever path is written or recreated, until
// ctx is cancelled. The parent directory is watched so atomic renames by
// editors are seen. onReload, when set, is called after each successful
// reload.
func (c *Catalog) Watch(ctx context.Context, path string, onReload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	c.logger.Info("catalog watcher started", zap.String("path", abs))

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("catalog watcher stopped")
			return nil

		case <-reload:
			reload = nil
			if err := c.LoadFile(abs); err != nil {
				c.logger.Warn("catalog reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			reload = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("catalog watcher error", zap.Error(watchErr))
		}
	}
}
