// ABOUTME: File watcher for config hot-reload: fsnotify events plus mtime polling
// ABOUTME: Polling on the injected clock catches what notifications miss (editors that rename, network mounts)

package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mauromedda/intentd/internal/clock"
	pilog "github.com/mauromedda/intentd/internal/log"
)

// Watcher monitors files for changes. Filesystem notifications trigger an
// immediate check; polling mtime at regular intervals is the fallback.
type Watcher struct {
	clock    clock.Clock
	paths    []string
	onChange func()
	interval time.Duration
	notify   bool

	mu     sync.Mutex
	mtimes map[string]time.Time
	stop   func()
}

// NewWatcher creates a watcher that calls onChange when any monitored file
// changes, appears, or disappears. A nil clock means the wall clock.
func NewWatcher(clk clock.Clock, paths []string, onChange func()) *Watcher {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Watcher{
		clock:    clk,
		paths:    paths,
		onChange: onChange,
		interval: 2 * time.Second,
		notify:   true,
		mtimes:   make(map[string]time.Time),
	}
}

// DisableNotify makes the watcher rely on polling alone. It takes effect on
// the next Start.
func (w *Watcher) DisableNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notify = false
}

// SetInterval overrides the default polling interval (2s). It takes effect on
// the next Start.
func (w *Watcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// Start snapshots the files and begins polling. Calling Start on a running
// watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return
	}
	w.snapshotLocked()
	stopPoll := w.clock.Every(w.interval, w.ForceCheck)
	stopNotify := func() {}
	if w.notify {
		stopNotify = w.startNotify()
	}
	w.stop = func() {
		stopPoll()
		stopNotify()
	}
}

// startNotify watches the parent directories of the paths, since editors
// often replace a file rather than write it in place. Failure to set up
// notifications is logged and leaves polling in charge.
func (w *Watcher) startNotify() func() {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		pilog.Debug("config: fsnotify unavailable, polling only: %v", err)
		return func() {}
	}

	watched := make(map[string]bool)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			pilog.Debug("config: not watching %s: %v", dir, err)
			continue
		}
		watched[dir] = true
	}

	names := make(map[string]bool, len(w.paths))
	for _, p := range w.paths {
		names[filepath.Clean(p)] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if names[filepath.Clean(ev.Name)] {
					w.ForceCheck()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				pilog.Debug("config: fsnotify: %v", err)
			}
		}
	}()

	return func() {
		_ = fw.Close()
		<-done
	}
}

// Stop halts polling and notifications. Safe to call multiple times. It must
// not be called from onChange.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// ForceCheck compares mtimes now and calls onChange synchronously on a change.
func (w *Watcher) ForceCheck() {
	w.mu.Lock()
	changed := w.checkLocked()
	if changed {
		w.snapshotLocked()
	}
	w.mu.Unlock()

	if changed {
		w.onChange()
	}
}

// checkLocked compares current mtimes with stored snapshots. Must hold mu.
func (w *Watcher) checkLocked() bool {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			if _, existed := w.mtimes[path]; existed {
				return true
			}
			continue
		}
		prev, ok := w.mtimes[path]
		if !ok || !info.ModTime().Equal(prev) {
			return true
		}
	}
	return false
}

// snapshotLocked records current mtimes. Must hold mu.
func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.mtimes, path)
			continue
		}
		w.mtimes[path] = info.ModTime()
	}
}
