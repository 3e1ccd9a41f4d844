// ABOUTME: Re-ingests documents when files under the docs directory change
// ABOUTME: Uses fsnotify; new subdirectories are watched as they appear, removals drop chunks

package rag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
)

const defaultSettle = 500 * time.Millisecond

// Watcher keeps the index in sync with a directory.
type Watcher struct {
	ing    *Ingester
	root   string
	fw     *fsnotify.Watcher
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool // set once Run starts shutting down; guards wg.Add
	wg      sync.WaitGroup
}

// NewWatcher watches root and every subdirectory below it.
func NewWatcher(ing *Ingester, root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		ing:     ing,
		root:    root,
		fw:      fw,
		settle:  defaultSettle,
		pending: make(map[string]*time.Timer),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.fw.Close()
		w.mu.Lock()
		w.closed = true
		for _, t := range w.pending {
			t.Stop()
		}
		w.mu.Unlock()
		w.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			pilog.Warn("rag: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				pilog.Warn("rag: %v", err)
			}
			// Files written before the watch was added produce no events.
			_ = filepath.WalkDir(ev.Name, func(path string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() && Supported(path) {
					w.schedule(ctx, path, w.reingest)
				}
				return nil
			})
			return
		}
	}
	if !Supported(ev.Name) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.schedule(ctx, ev.Name, w.remove)
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.schedule(ctx, ev.Name, w.reingest)
	}
}

// schedule runs fn for path once events for it have been quiet for the settle period.
func (w *Watcher) schedule(ctx context.Context, path string, fn func(context.Context, string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() { w.fire(ctx, path, fn) })
}

// fire runs a settled job unless shutdown has begun. A timer that fired just
// before Run stopped it lands here after closed is set and does nothing.
func (w *Watcher) fire(ctx context.Context, path string, fn func(context.Context, string)) {
	w.mu.Lock()
	delete(w.pending, path)
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()
	if ctx.Err() != nil {
		return
	}
	fn(ctx, path)
}

func (w *Watcher) reingest(ctx context.Context, path string) {
	if _, err := w.ing.IngestFile(ctx, w.root, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.remove(ctx, path)
			return
		}
		pilog.Warn("rag: re-ingest failed: %v", err)
	}
}

func (w *Watcher) remove(ctx context.Context, path string) {
	if _, err := os.Stat(path); err == nil {
		// Renamed over or recreated; treat as a change.
		w.reingest(ctx, path)
		return
	}
	source := SourceName(w.root, path)
	if err := w.ing.Index.DeleteSource(ctx, source); err != nil {
		pilog.Warn("rag: dropping %s: %v", source, err)
		return
	}
	pilog.Info("rag: removed %s from index", source)
}
