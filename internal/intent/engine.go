// ABOUTME: Stateful intent engine: records telemetry, classifies on a repeating tick, notifies on change.
// ABOUTME: Clock and interval are injected so tests drive tick boundaries with virtual time.

package intent

import (
	"errors"
	"sync"
	"time"

	"github.com/mauromedda/intentd/internal/clock"
	pilog "github.com/mauromedda/intentd/internal/log"
)

// DefaultInterval is the time between classification ticks.
const DefaultInterval = 3 * time.Second

var (
	// ErrAlreadyRunning is returned by Start on a running engine.
	ErrAlreadyRunning = errors.New("intent engine already running")
	// ErrNilObserver is returned by Start when no observer is given.
	ErrNilObserver = errors.New("intent engine observer is nil")
)

// Config holds construction options for an Engine.
type Config struct {
	Clock      clock.Clock   // defaults to the wall clock
	Interval   time.Duration // defaults to DefaultInterval
	Thresholds Thresholds    // zero value means DefaultThresholds()
}

// Engine tracks what the user is doing right now within one editing session.
// All methods are safe for concurrent use; recording calls and ticks never
// interleave.
type Engine struct {
	mu         sync.Mutex
	clock      clock.Clock
	interval   time.Duration
	thresholds Thresholds

	window      Window
	current     Intent
	previous    Intent
	hasPrevious bool
	lastEdit    time.Time

	observer Observer
	stopTick func()
	run      uint64 // bumped whenever the tick is armed or disarmed
}

// NewEngine creates an idle engine with the given config, applying defaults.
// The current intent starts as Exploring.
func NewEngine(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Engine{
		clock:      cfg.Clock,
		interval:   cfg.Interval,
		thresholds: cfg.Thresholds,
		current:    Exploring,
		lastEdit:   cfg.Clock.Now(),
	}
}

// Start arms the repeating tick and registers the observer.
func (e *Engine) Start(observer Observer) error {
	if observer == nil {
		return ErrNilObserver
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopTick != nil {
		return ErrAlreadyRunning
	}
	e.observer = observer
	e.armLocked()
	pilog.Debug("intent: engine started (interval %s)", e.interval)
	return nil
}

// Stop disarms the tick and clears the observer. It is idempotent, safe on an
// idle engine, and does not wait for a tick already in progress, so it may be
// called from inside the observer.
func (e *Engine) Stop() {
	e.mu.Lock()
	stop := e.stopTick
	e.stopTick = nil
	e.observer = nil
	e.run++
	e.mu.Unlock()

	if stop != nil {
		stop()
		pilog.Debug("intent: engine stopped")
	}
}

// Running reports whether the tick is armed.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopTick != nil
}

// RecordChange folds an edit event into the current window and marks the
// edit time.
func (e *Engine) RecordChange(c Change) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastEdit = e.clock.Now()
	e.window.RecordChange(c)
}

// RecordCursorMove counts a cursor movement. It does not affect idle time.
func (e *Engine) RecordCursorMove() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.window.RecordCursorMove()
}

// RecordCursorMoves counts n cursor movements at once; n <= 0 counts nothing.
func (e *Engine) RecordCursorMoves(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.window.RecordCursorMoves(n)
}

// RecordUndoRedo counts an undo or redo reported outside a change event.
func (e *Engine) RecordUndoRedo() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.window.RecordUndoRedo()
}

// Tick runs one classification cycle: evaluate the window, update the current
// intent on a key change, reset the window, then notify the observer if the
// intent changed. Hosts without a timer may call it directly.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.tickLocked()
}

// armLocked schedules ticks for a new run. A callback that fires after its
// run was stopped or re-armed does nothing. Must hold mu.
func (e *Engine) armLocked() {
	e.run++
	run := e.run
	e.stopTick = e.clock.Every(e.interval, func() {
		e.mu.Lock()
		if e.run != run || e.stopTick == nil {
			e.mu.Unlock()
			return
		}
		e.tickLocked()
	})
}

// tickLocked is Tick's body. It is entered with mu held and releases it
// before notifying the observer.
func (e *Engine) tickLocked() {
	now := e.clock.Now()
	m := e.window.Snapshot()
	d := e.thresholds.Evaluate(m, now.Sub(e.lastEdit), e.current)

	var tr Transition
	changed := !d.Intent.Same(e.current)
	if changed {
		tr = Transition{From: e.current, To: d.Intent, Rule: d.Rule, At: now}
		e.previous = e.current
		e.hasPrevious = true
		e.current = d.Intent
	}
	e.window.Reset()
	observer := e.observer
	e.mu.Unlock()

	pilog.Debug("intent: tick rule=%s intent=%s added=%d deleted=%d cursor=%d undo=%d",
		d.Rule, d.Intent, m.CharsAdded, m.CharsDeleted, m.CursorMoves, m.UndoRedoCount)

	if !changed {
		return
	}
	pilog.Info("intent: %s", tr.Reason())
	if observer != nil {
		observer(tr)
	}
}

// CurrentIntent returns the intent in effect.
func (e *Engine) CurrentIntent() Intent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// PreviousIntent returns the intent replaced by the most recent transition,
// or false if no transition has happened yet.
func (e *Engine) PreviousIntent() (Intent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previous, e.hasPrevious
}

// Snapshot returns the counters of the open window.
func (e *Engine) Snapshot() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window.Snapshot()
}

// Thresholds returns the rule constants in use.
func (e *Engine) Thresholds() Thresholds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds
}

// SetThresholds replaces the rule constants from the next tick onward.
// A zero value restores the defaults.
func (e *Engine) SetThresholds(t Thresholds) {
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = t
}

// Interval returns the tick period.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// SetInterval changes the tick period, re-arming the tick if running.
func (e *Engine) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	e.mu.Lock()
	if d == e.interval {
		e.mu.Unlock()
		return
	}
	e.interval = d
	old := e.stopTick
	if old != nil {
		e.armLocked()
	}
	e.mu.Unlock()

	if old != nil {
		old()
	}
}
