// ABOUTME: Deterministic virtual clock; Advance fires due callbacks on the caller's goroutine
// ABOUTME: Lets tests cross tick boundaries without sleeping

package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance or Set is called.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers map[int]*manualTimer
	nextID int
}

type manualTimer struct {
	id       int
	interval time.Duration
	next     time.Time
	fn       func()
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:    start,
		timers: make(map[int]*manualTimer),
	}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers fn to fire each time virtual time crosses a multiple of
// interval after the registration instant.
func (m *Manual) Every(interval time.Duration, fn func()) func() {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.timers[id] = &manualTimer{
		id:       id,
		interval: interval,
		next:     m.now.Add(interval),
		fn:       fn,
	}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.timers, id)
		m.mu.Unlock()
	}
}

// Advance moves virtual time forward by d, firing every due callback in
// deadline order. Callbacks run without the clock lock held, so they may
// stop timers or read Now.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	m.runUntil(target)
}

// Set jumps virtual time to t without firing callbacks.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	for _, tm := range m.timers {
		for !tm.next.After(t) {
			tm.next = tm.next.Add(tm.interval)
		}
	}
	m.mu.Unlock()
}

// Pending returns the number of armed callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) runUntil(target time.Time) {
	for {
		m.mu.Lock()
		due := m.earliestDueLocked(target)
		if due == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next = due.next.Add(due.interval)
		fn := due.fn
		m.mu.Unlock()

		fn()
	}
}

// earliestDueLocked returns the timer with the earliest deadline at or before
// target, breaking ties by registration order. Must hold mu.
func (m *Manual) earliestDueLocked(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, tm := range m.timers {
		if !tm.next.After(target) {
			due = append(due, tm)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return due[i].id < due[j].id
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}
