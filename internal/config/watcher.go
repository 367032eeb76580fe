package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"musebot/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file for changes and reloads it, so booking
// rules can be adjusted without restarting a running bot. It watches the
// containing directory because editors typically rename-over the file.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	onChange    func(*Config)
	lastEvent   time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	// Reload counters, exposed for tests and debugging.
	Reloads int
	Errors  int
}

// NewWatcher creates a watcher for the given config path. onChange is
// invoked with the freshly loaded config after every successful reload.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		path:        path,
		onChange:    onChange,
		debounceDur: 500 * time.Millisecond, // Debounce rapid editor saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the watch loop runs in a goroutine
// until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Get(logging.CategoryConfig).Infof("watching config: %s", w.path)

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	log := logging.Get(logging.CategoryConfig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
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
			if time.Since(w.lastEvent) < w.debounceDur {
				w.mu.Unlock()
				continue
			}
			w.lastEvent = time.Now()
			w.mu.Unlock()

			cfg, err := Load(w.path)
			if err != nil {
				w.mu.Lock()
				w.Errors++
				w.mu.Unlock()
				log.Warnf("config reload failed: %v", err)
				continue
			}
			if err := cfg.Validate(); err != nil {
				w.mu.Lock()
				w.Errors++
				w.mu.Unlock()
				log.Warnf("reloaded config invalid, keeping previous: %v", err)
				continue
			}

			w.mu.Lock()
			w.Reloads++
			w.mu.Unlock()
			log.Infof("config reloaded: %s", w.path)
			if w.onChange != nil {
				w.onChange(cfg)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.Errors++
			w.mu.Unlock()
			log.Warnf("config watcher error: %v", err)
		}
	}
}

// Stop halts the watch loop and releases the fsnotify watcher.
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
	_ = w.watcher.Close()
}

// Stats returns the reload and error counters.
func (w *Watcher) Stats() (reloads, errors int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Reloads, w.Errors
}
