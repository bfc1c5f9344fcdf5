package schema

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the catalog when the schema map file changes on disk,
// so a regenerated map is picked up without restarting the chat session.
// Events are debounced to survive editors that write in bursts.
type Watcher struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	catalog  *Catalog
	path     string
	logger   *zap.Logger
	pending  time.Time
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher watches the catalog's backing file. Start must be called
// to begin delivering reloads.
func NewWatcher(catalog *Catalog, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fw:       fw,
		catalog:  catalog,
		path:     catalog.path,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in its own
// goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory, not the file: editors replace files by
	// rename, which drops a direct file watch.
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.fw.Close()
		return err
	}
	w.logger.Debug("watching schema map", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.fw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("schema watcher error", zap.Error(err))
		case <-tick.C:
			w.maybeReload()
		}
	}
}

func (w *Watcher) maybeReload() {
	w.mu.Lock()
	due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
	if due {
		w.pending = time.Time{}
	}
	w.mu.Unlock()
	if !due {
		return
	}

	if err := w.catalog.Reload(); err != nil {
		w.logger.Warn("schema map reload failed", zap.Error(err))
		return
	}
	w.logger.Info("schema map reloaded", zap.String("path", w.path))
}
