// Package watch reloads files when they change on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of events from a single save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a set of files. It watches the parent
// directories so that editors which save by rename are still seen.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool
	pending  map[string]time.Time
	debounce time.Duration
	onChange func(path string)
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New creates a watcher that calls onChange, from its own goroutine, once
// per settled change of any of the given files.
func New(onChange func(path string), log *zap.Logger, files ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		pending:  make(map[string]time.Time),
		debounce: DefaultDebounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// SetDebounce changes the settle time. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	w.mu.Lock()
	tick := w.debounce / 4
	w.mu.Unlock()
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return
	}
	w.pending[abs] = time.Now()
	w.log.Debug("file event", zap.String("path", abs), zap.String("op", ev.Op.String()))
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.log.Info("file changed", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	}
}
