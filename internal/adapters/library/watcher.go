package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher rescans the library after file system changes settle and hands
// the new catalog to OnChange.
type Watcher struct {
	scanner  *Scanner
	debounce time.Duration
	onChange func(*domain.Catalog)
}

func NewWatcher(scanner *Scanner, debounce time.Duration, onChange func(*domain.Catalog)) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{scanner: scanner, debounce: debounce, onChange: onChange}
}

// Run blocks until ctx is done. fsnotify is not recursive, so every
// directory under the root is watched and new ones are added as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("library: create watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.scanner.root); err != nil {
		return err
	}
	if w.scanner.coversDir != "" {
		if err := fw.Add(w.scanner.coversDir); err != nil {
			logger.Warn("library: covers directory not watched", logger.String("dir", w.scanner.coversDir), logger.ErrorField(err))
		}
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						logger.Warn("library: watch new directory", logger.String("dir", event.Name), logger.ErrorField(err))
					}
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library: watcher error", logger.ErrorField(err))
		case <-timer.C:
			catalog, err := w.scanner.Scan(ctx)
			if err != nil {
				logger.Error("library: rescan failed", logger.ErrorField(err))
				continue
			}
			w.onChange(catalog)
		}
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("library: watch %s: %w", p, err)
		}
		return nil
	})
}
