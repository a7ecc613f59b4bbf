// ABOUTME: Tests for the per-window metrics accumulator.
// ABOUTME: Covers per-field contributions, comment/rename detection, coercion, additivity, and reset.

package intent

import (
	"strings"
	"testing"
)

func TestWindow_RecordChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change Change
		want   Metrics
	}{
		{
			name:   "plain insert with newlines",
			change: Change{InsertedText: "hello\nworld\n"},
			want:   Metrics{CharsAdded: 12, LinesAdded: 2, TotalContentChanges: 1},
		},
		{
			name:   "pure delete counts one deleted line",
			change: Change{DeletedLength: 40},
			want:   Metrics{CharsDeleted: 40, LinesDeleted: 1, TotalContentChanges: 1},
		},
		{
			name:   "empty event still counts as a change",
			change: Change{},
			want:   Metrics{TotalContentChanges: 1},
		},
		{
			name:   "negative delete coerced to zero",
			change: Change{DeletedLength: -5},
			want:   Metrics{TotalContentChanges: 1},
		},
		{
			name:   "undo flag",
			change: Change{InsertedText: "x", IsUndo: true},
			want:   Metrics{CharsAdded: 1, UndoRedoCount: 1, TotalContentChanges: 1},
		},
		{
			name:   "undo and redo together count once",
			change: Change{IsUndo: true, IsRedo: true},
			want:   Metrics{UndoRedoCount: 1, TotalContentChanges: 1},
		},
		{
			name:   "line comment with leading whitespace",
			change: Change{InsertedText: "  // TODO fix"},
			want:   Metrics{CharsAdded: 13, CommentCharsAdded: 13, TotalContentChanges: 1},
		},
		{
			name:   "hash comment",
			change: Change{InsertedText: "# note"},
			want:   Metrics{CharsAdded: 6, CommentCharsAdded: 6, TotalContentChanges: 1},
		},
		{
			name:   "block comment",
			change: Change{InsertedText: "/* a */"},
			want:   Metrics{CharsAdded: 7, CommentCharsAdded: 7, TotalContentChanges: 1},
		},
		{
			name:   "docstring",
			change: Change{InsertedText: `"""doc"""`},
			want:   Metrics{CharsAdded: 9, CommentCharsAdded: 9, TotalContentChanges: 1},
		},
		{
			name:   "single-quote docstring",
			change: Change{InsertedText: "'''x'''"},
			want:   Metrics{CharsAdded: 7, CommentCharsAdded: 7, TotalContentChanges: 1},
		},
		{
			name:   "html comment",
			change: Change{InsertedText: "<!-- note -->"},
			want:   Metrics{CharsAdded: 13, CommentCharsAdded: 13, TotalContentChanges: 1},
		},
		{
			name:   "comment marker mid-line is not a comment",
			change: Change{InsertedText: "x = 1 # one"},
			want:   Metrics{CharsAdded: 11, TotalContentChanges: 1},
		},
		{
			name:   "rename-shaped replacement",
			change: Change{InsertedText: "userName", DeletedLength: 6},
			want: Metrics{
				CharsAdded: 8, CharsDeleted: 6, LinesDeleted: 1,
				TotalContentChanges: 1, RenamePatterns: 1,
			},
		},
		{
			name:   "replacement too different in length",
			change: Change{InsertedText: "identifier", DeletedLength: 3},
			want: Metrics{
				CharsAdded: 10, CharsDeleted: 3, LinesDeleted: 1,
				TotalContentChanges: 1,
			},
		},
		{
			name:   "replacement too short for a rename",
			change: Change{InsertedText: "ab", DeletedLength: 3},
			want: Metrics{
				CharsAdded: 2, CharsDeleted: 3, LinesDeleted: 1,
				TotalContentChanges: 1,
			},
		},
		{
			name:   "decomposed accent counts each code unit",
			change: Change{InsertedText: "e\u0301"},
			want:   Metrics{CharsAdded: 2, TotalContentChanges: 1},
		},
		{
			name:   "astral characters count two units each",
			change: Change{InsertedText: "😀😀😀"},
			want:   Metrics{CharsAdded: 6, TotalContentChanges: 1},
		},
		{
			name:   "rename measured in the editor's unit",
			change: Change{InsertedText: strings.Repeat("e\u0301", 3), DeletedLength: 6},
			want: Metrics{
				CharsAdded: 6, CharsDeleted: 6, LinesDeleted: 1,
				TotalContentChanges: 1, RenamePatterns: 1,
			},
		},
		{
			name:   "comment after a no-break space",
			change: Change{InsertedText: "\u00a0// note"},
			want:   Metrics{CharsAdded: 8, CommentCharsAdded: 8, TotalContentChanges: 1},
		},
		{
			name:   "comment after an em space and a vertical tab",
			change: Change{InsertedText: "\u2003\v# x"},
			want:   Metrics{CharsAdded: 5, CommentCharsAdded: 5, TotalContentChanges: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var w Window
			w.RecordChange(tt.change)
			if got := w.Snapshot(); got != tt.want {
				t.Errorf("Snapshot() = %+v\nwant         %+v", got, tt.want)
			}
		})
	}
}

func TestWindow_CursorAndUndoSignals(t *testing.T) {
	t.Parallel()

	var w Window
	for range 4 {
		w.RecordCursorMove()
	}
	w.RecordCursorMoves(10)
	w.RecordCursorMoves(0)
	w.RecordCursorMoves(-3)
	w.RecordUndoRedo()
	w.RecordUndoRedo()

	want := Metrics{CursorMoves: 14, UndoRedoCount: 2}
	if got := w.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v; want %+v", got, want)
	}
}

func addMetrics(a, b Metrics) Metrics {
	return Metrics{
		CharsAdded:          a.CharsAdded + b.CharsAdded,
		CharsDeleted:        a.CharsDeleted + b.CharsDeleted,
		LinesAdded:          a.LinesAdded + b.LinesAdded,
		LinesDeleted:        a.LinesDeleted + b.LinesDeleted,
		CursorMoves:         a.CursorMoves + b.CursorMoves,
		UndoRedoCount:       a.UndoRedoCount + b.UndoRedoCount,
		CommentCharsAdded:   a.CommentCharsAdded + b.CommentCharsAdded,
		TotalContentChanges: a.TotalContentChanges + b.TotalContentChanges,
		RenamePatterns:      a.RenamePatterns + b.RenamePatterns,
	}
}

func TestWindow_Additivity(t *testing.T) {
	t.Parallel()

	changes := []Change{
		{InsertedText: "func main() {\n"},
		{InsertedText: "// explain\n"},
		{DeletedLength: 4},
		{InsertedText: "count", DeletedLength: 4},
		{InsertedText: "total", DeletedLength: 5, IsRedo: true},
		{IsUndo: true, DeletedLength: 12},
	}

	var combined Window
	var sum Metrics
	for _, c := range changes {
		combined.RecordChange(c)
		var single Window
		single.RecordChange(c)
		sum = addMetrics(sum, single.Snapshot())
	}
	combined.RecordCursorMove()
	sum.CursorMoves++

	if got := combined.Snapshot(); got != sum {
		t.Errorf("combined = %+v\nsum      = %+v", got, sum)
	}
}

func TestWindow_Reset(t *testing.T) {
	t.Parallel()

	var w Window
	w.RecordChange(Change{InsertedText: "abc\n", DeletedLength: 3, IsUndo: true})
	w.RecordCursorMove()
	w.Reset()

	if got := w.Snapshot(); got != (Metrics{}) {
		t.Errorf("after Reset, Snapshot() = %+v; want zero", got)
	}
}

func TestCharCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 5},
		{"🧱", 2},
		{"o\u0308", 2},
		{"😀😀😀", 6},
	}
	for _, tt := range tests {
		if got := CharCount(tt.in); got != tt.want {
			t.Errorf("CharCount(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}
