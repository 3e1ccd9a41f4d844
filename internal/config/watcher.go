// ABOUTME: Polling watcher that reloads a settings file when its mtime changes
// ABOUTME: The callback receives the reloaded settings; parse failures are reported and skipped

package config

import (
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is how often the watched file is polled.
const DefaultWatchInterval = 2 * time.Second

// Watcher reloads a settings file on change.
type Watcher struct {
	path     string
	load     func(string) (*Settings, error)
	onChange func(*Settings)
	onError  func(error)
	interval time.Duration

	mu       sync.Mutex
	mtime    time.Time
	present  bool
	running  bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the settings file at path. onChange gets the
// reloaded settings; onError (optional) gets reload failures.
func NewWatcher(path string, onChange func(*Settings), onError func(error)) *Watcher {
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{
		path:     path,
		load:     LoadFile,
		onChange: onChange,
		onError:  onError,
		interval: DefaultWatchInterval,
		stopCh:   make(chan struct{}),
	}
}

// SetInterval overrides the polling interval. Call before Start.
func (w *Watcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// Start records the current mtime and begins polling. Later calls are no-ops.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.snapshotLocked()
	interval := w.interval
	w.mu.Unlock()

	go w.loop(interval)
}

// Stop halts polling. Safe to call multiple times and concurrently.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.stopCh)
	})
}

// Check reloads immediately if the file changed since the last look.
func (w *Watcher) Check() {
	w.mu.Lock()
	changed := w.changedLocked()
	w.mu.Unlock()
	if changed {
		w.reload()
	}
}

func (w *Watcher) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

func (w *Watcher) reload() {
	s, err := w.load(w.path)
	if err != nil {
		w.onError(err)
		return
	}
	w.onChange(s)
}

// snapshotLocked records the file's current mtime. Must hold mu.
func (w *Watcher) snapshotLocked() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.present = false
		return
	}
	w.mtime, w.present = info.ModTime(), true
}

// changedLocked updates the recorded mtime and reports whether it moved. A
// removed file counts as unchanged since there is nothing to reload. Must hold mu.
func (w *Watcher) changedLocked() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		w.present = false
		return false
	}
	changed := !w.present || !info.ModTime().Equal(w.mtime)
	w.mtime, w.present = info.ModTime(), true
	return changed
}
