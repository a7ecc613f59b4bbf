// ABOUTME: Priority-ordered rule table mapping a metrics window to an intent.
// ABOUTME: Pure evaluation: same window, idle time, and current intent always yield the same result.

package intent

import (
	"fmt"
	"time"
)

// Rule identifies which row of the rule table produced a decision.
type Rule int

const (
	RuleUndoBurst    Rule = iota // undo/redo burst -> confused
	RuleIdle                     // idle with no edits -> exploring
	RuleCommentRatio             // mostly comment text -> proposing
	RuleRewriteRatio             // mostly deletions -> experimenting
	RuleRename                   // repeated rename-shaped edits -> refactoring
	RuleGrowth                   // mostly insertions -> building
	RuleCursorBrowse             // cursor activity, little typing -> exploring
	RuleNoEdits                  // no edits this window -> exploring
	RuleUnchanged                // nothing matched; keep current intent
)

// String returns the rule's name as used in logs.
func (r Rule) String() string {
	switch r {
	case RuleUndoBurst:
		return "undo_burst"
	case RuleIdle:
		return "idle"
	case RuleCommentRatio:
		return "comment_ratio"
	case RuleRewriteRatio:
		return "rewrite_ratio"
	case RuleRename:
		return "rename"
	case RuleGrowth:
		return "growth"
	case RuleCursorBrowse:
		return "cursor_browse"
	case RuleNoEdits:
		return "no_edits"
	case RuleUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Thresholds holds the tunable constants of the rule table.
type Thresholds struct {
	UndoBurst            int           // undo/redo count at or above which the user is confused
	IdleThreshold        time.Duration // idle longer than this with no edits is exploring
	CommentRatio         float64       // comment share of added chars above which the user is proposing
	RewriteMinChars      int           // total must exceed this before the rewrite ratio applies
	RewriteRatio         float64       // deleted share of total above which the user is experimenting
	RenameBurst          int           // rename-shaped edits at or above which the user is refactoring
	GrowthMinChars       int           // chars added must exceed this to count as building
	GrowthFactor         int           // chars added must exceed this multiple of chars deleted
	CursorBrowseMoves    int           // cursor moves above this with little typing is exploring
	CursorBrowseMaxChars int           // "little typing": total below this
}

// DefaultThresholds returns the stock rule table constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UndoBurst:            3,
		IdleThreshold:        5 * time.Second,
		CommentRatio:         0.5,
		RewriteMinChars:      10,
		RewriteRatio:         0.6,
		RenameBurst:          2,
		GrowthMinChars:       10,
		GrowthFactor:         2,
		CursorBrowseMoves:    3,
		CursorBrowseMaxChars: 5,
	}
}

// Decision is the outcome of evaluating the rule table.
type Decision struct {
	Intent Intent
	Rule   Rule
}

// Classify evaluates the default rule table.
func Classify(m Metrics, idle time.Duration, current Intent) Intent {
	return DefaultThresholds().Evaluate(m, idle, current).Intent
}

// Evaluate applies the rules in priority order; the first match wins.
func (t Thresholds) Evaluate(m Metrics, idle time.Duration, current Intent) Decision {
	total := m.Total()

	switch {
	case m.UndoRedoCount >= t.UndoBurst:
		return Decision{Confused, RuleUndoBurst}
	case idle > t.IdleThreshold && total == 0:
		return Decision{Exploring, RuleIdle}
	case m.CommentCharsAdded > 0 && m.CharsAdded > 0 &&
		ratio(m.CommentCharsAdded, m.CharsAdded) > t.CommentRatio:
		return Decision{Proposing, RuleCommentRatio}
	case total > t.RewriteMinChars && ratio(m.CharsDeleted, total) > t.RewriteRatio:
		return Decision{Experimenting, RuleRewriteRatio}
	case m.RenamePatterns >= t.RenameBurst:
		return Decision{Refactoring, RuleRename}
	case m.CharsAdded > t.GrowthMinChars && m.CharsAdded > t.GrowthFactor*m.CharsDeleted:
		return Decision{Building, RuleGrowth}
	case m.CursorMoves > t.CursorBrowseMoves && total < t.CursorBrowseMaxChars:
		return Decision{Exploring, RuleCursorBrowse}
	case total == 0:
		return Decision{Exploring, RuleNoEdits}
	default:
		return Decision{current, RuleUnchanged}
	}
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
