// ABOUTME: Intent transition record handed to the engine observer.
// ABOUTME: Carries the outgoing and incoming intents plus the rule that caused the change.

package intent

import (
	"fmt"
	"time"
)

// Transition describes one change of the current intent.
type Transition struct {
	From Intent
	To   Intent
	Rule Rule
	At   time.Time
}

// Reason returns a one-line description, e.g. "exploring -> building (growth)".
func (t Transition) Reason() string {
	return fmt.Sprintf("%s -> %s (%s)", t.From, t.To, t.Rule)
}

// Observer receives each transition. It runs on the ticking goroutine after
// the engine state has been updated, without the engine lock held.
type Observer func(Transition)
