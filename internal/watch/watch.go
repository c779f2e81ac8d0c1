// Package watch runs a callback whenever something changes under a directory
// tree, so generated files can be rebuilt while the dev server is running.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after changes under Root settle for Debounce.
type Watcher struct {
	Root string

	// Ignore lists paths whose events never trigger OnChange, typically the
	// files OnChange itself writes.
	Ignore   []string
	Debounce time.Duration
	Logger   *zap.Logger
	OnChange func()
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, w.Root, logger); err != nil {
		return err
	}
	logger.Info("Watching for changes", zap.String("root", w.Root))

	ignored := make(map[string]bool, len(w.Ignore))
	for _, p := range w.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignored[abs] = true
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err == nil && ignored[abs] {
				continue
			}
			logger.Debug("Change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addTree(watcher, event.Name, logger); err != nil {
					logger.Error("error watching new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() == nil && w.OnChange != nil {
					w.OnChange()
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it. fsnotify is not
// recursive.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string, logger *zap.Logger) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to watch '%s': %w", root, err)
			}
			logger.Warn("error walking path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
