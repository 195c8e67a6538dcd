package artifacts

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// Watcher invalidates a catalog when the persisted passage list or ID
// maps change on disk. It lets a long-lived serving process pick up the
// output of a fresh index build without restarting.
type Watcher struct {
	fs      *fsnotify.Watcher
	catalog *Catalog
	done    chan struct{}
}

// NewWatcher starts watching the store's index directory.
func NewWatcher(store *Store, catalog *Catalog) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("artifacts: create watcher: %w", err)
	}
	if err := fs.Add(store.Dir()); err != nil {
		fs.Close()
		return nil, fmt.Errorf("artifacts: watch %s: %w", store.Dir(), err)
	}

	w := &Watcher{fs: fs, catalog: catalog, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			switch filepath.Base(ev.Name) {
			case PassagesFile, ReverseMapFile:
				logger.Debug("Index artifact changed (%s), invalidating passage cache", ev.Name)
				w.catalog.Invalidate()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Artifact watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
