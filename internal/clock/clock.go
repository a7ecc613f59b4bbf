// ABOUTME: Time source and repeating-callback scheduler injected into the intent engine
// ABOUTME: Real wraps time.Ticker; Manual advances virtual time synchronously for tests

package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time and arms repeating callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn once per interval until the returned stop func is called.
	// Stop is idempotent and does not wait for an fn call in progress.
	Every(interval time.Duration, fn func()) (stop func())
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Every runs fn on its own goroutine driven by a time.Ticker.
func (Real) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// Stop may have raced the tick; prefer the stop.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
