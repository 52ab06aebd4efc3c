package fixtures

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher drops the loader cache when a fixture file changes on disk.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	debounce time.Duration
	reloaded chan struct{}
}

// NewWatcher watches the loader's data directory.
func NewWatcher(loader *Loader, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(loader.dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		loader:   loader,
		watcher:  fw,
		debounce: debounce,
		reloaded: make(chan struct{}, 1),
	}, nil
}

// Reloaded signals after each cache drop. Signals are dropped when nobody reads.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Run processes events until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.loader.logger.Warn("fixture watcher error", zap.Error(err))
		case <-timer.C:
			pending = false
			w.loader.Reload()
			w.loader.logger.Info("fixtures reloaded", zap.String("dir", w.loader.dir))
			select {
			case w.reloaded <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == w.loader.demoFile || name == w.loader.templatesFile
}
