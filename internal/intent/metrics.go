// ABOUTME: Per-window editing counters fed by editor telemetry calls.
// ABOUTME: Recording never fails; malformed input contributes its neutral effect.

package intent

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// Rename detection: a replacement whose deleted and inserted lengths both
// exceed renameMinLength and differ by at most renameTolerance.
const (
	renameMinLength = 2
	renameTolerance = 2
)

// Leading whitespace includes Unicode spaces, vertical tab and the BOM.
var commentOpener = regexp.MustCompile(`^[\s\p{Z}\v\x{FEFF}]*(//|/\*|\*|#|"""|'''|<!--)`)

// Metrics holds the counters accumulated during one classification window.
type Metrics struct {
	CharsAdded          int `json:"charsAdded"`
	CharsDeleted        int `json:"charsDeleted"`
	LinesAdded          int `json:"linesAdded"`
	LinesDeleted        int `json:"linesDeleted"` // one per delete event, not per line
	CursorMoves         int `json:"cursorMoves"`
	UndoRedoCount       int `json:"undoRedoCount"`
	CommentCharsAdded   int `json:"commentCharsAdded"`
	TotalContentChanges int `json:"totalContentChanges"`
	RenamePatterns      int `json:"renamePatterns"`
}

// Total returns characters added plus characters deleted.
func (m Metrics) Total() int {
	return m.CharsAdded + m.CharsDeleted
}

// Change is one edit event reported by the editor.
type Change struct {
	InsertedText  string
	DeletedLength int
	IsUndo        bool
	IsRedo        bool
}

// Window accumulates Metrics between two classification ticks.
// The zero value is an empty window. Window is not safe for concurrent use;
// Engine serialises access to its own window.
type Window struct {
	m Metrics
}

// RecordChange folds one edit event into the window.
func (w *Window) RecordChange(c Change) {
	added := CharCount(c.InsertedText)
	deleted := c.DeletedLength
	if deleted < 0 {
		deleted = 0
	}

	w.m.CharsAdded += added
	w.m.CharsDeleted += deleted
	w.m.TotalContentChanges++

	if c.InsertedText != "" {
		w.m.LinesAdded += strings.Count(c.InsertedText, "\n")
	}
	if deleted > 0 {
		w.m.LinesDeleted++
	}
	if c.IsUndo || c.IsRedo {
		w.m.UndoRedoCount++
	}
	if c.InsertedText != "" && commentOpener.MatchString(c.InsertedText) {
		w.m.CommentCharsAdded += added
	}
	if deleted > renameMinLength && added > renameMinLength && abs(deleted-added) <= renameTolerance {
		w.m.RenamePatterns++
	}
}

// RecordCursorMove counts one cursor movement.
func (w *Window) RecordCursorMove() {
	w.m.CursorMoves++
}

// RecordCursorMoves counts n cursor movements; n <= 0 counts nothing.
func (w *Window) RecordCursorMoves(n int) {
	if n > 0 {
		w.m.CursorMoves += n
	}
}

// RecordUndoRedo counts an undo or redo signalled outside a change event.
func (w *Window) RecordUndoRedo() {
	w.m.UndoRedoCount++
}

// Reset returns every counter to zero.
func (w *Window) Reset() {
	w.m = Metrics{}
}

// Snapshot returns a copy of the current counters.
func (w *Window) Snapshot() Metrics {
	return w.m
}

// CharCount returns the length of s in UTF-16 code units, the unit editors
// use for range lengths. Characters outside the BMP count as two.
func CharCount(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
