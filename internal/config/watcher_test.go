// ABOUTME: Tests for polling-based file watcher
// ABOUTME: Validates mtime polling under a manual clock and fsnotify-driven reloads without ticks

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mauromedda/intentd/internal/clock"
)

func writeWithMtime(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeWithMtime(t, path, "interval: 3s\n", base)

	clk := clock.NewManual(base)
	called := 0
	w := NewWatcher(clk, []string{path}, func() { called++ })
	w.DisableNotify()
	w.Start()
	defer w.Stop()

	clk.Advance(2 * time.Second)
	if called != 0 {
		t.Fatalf("onChange called %d times without a change", called)
	}

	writeWithMtime(t, path, "interval: 1s\n", base.Add(time.Minute))
	clk.Advance(2 * time.Second)
	if called != 1 {
		t.Errorf("onChange called %d times, want 1", called)
	}

	// Same mtime on the next poll: no repeat.
	clk.Advance(2 * time.Second)
	if called != 1 {
		t.Errorf("onChange called %d times after settling, want 1", called)
	}
}

func TestWatcher_DetectsCreateAndRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	clk := clock.NewManual(time.Now())
	called := 0
	w := NewWatcher(clk, []string{path}, func() { called++ })
	w.DisableNotify()
	w.SetInterval(time.Second)
	w.Start()
	defer w.Stop()

	writeWithMtime(t, path, "log_level: debug\n", time.Now())
	clk.Advance(time.Second)
	if called != 1 {
		t.Fatalf("create: called = %d, want 1", called)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Second)
	if called != 2 {
		t.Errorf("remove: called = %d, want 2", called)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(time.Now())
	w := NewWatcher(clk, nil, func() {})
	w.DisableNotify()
	w.Start()
	w.Start()
	if clk.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", clk.Pending())
	}
	w.Stop()
	w.Stop()
	if clk.Pending() != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", clk.Pending())
	}
}

func TestWatcher_NotifyWithoutPolling(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeWithMtime(t, path, "interval: 3s\n", time.Now().Add(-time.Hour))

	// The manual clock never advances, so only a notification can fire.
	clk := clock.NewManual(time.Now())
	changed := make(chan struct{}, 8)
	w := NewWatcher(clk, []string{path}, func() { changed <- struct{}{} })
	w.Start()

	writeWithMtime(t, path, "interval: 1s\n", time.Now())

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Error("no reload within 5s of the write")
	}
	w.Stop()
}
