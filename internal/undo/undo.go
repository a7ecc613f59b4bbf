// ABOUTME: Generic undo/redo history of state snapshots
// ABOUTME: Bounded depth; undo and redo swap the live state with the stored one

package undo

// Stack is a bounded undo/redo history. Callers push the state they are
// about to leave; Undo and Redo take the live state and hand back the one to
// restore.
type Stack[S any] struct {
	undoStack []S
	redoStack []S
	maxSize   int
}

// New creates an undo Stack with the given maximum depth. A depth below one
// is treated as one.
func New[S any](maxSize int) *Stack[S] {
	maxSize = max(maxSize, 1)
	return &Stack[S]{
		undoStack: make([]S, 0, maxSize),
		redoStack: make([]S, 0, maxSize),
		maxSize:   maxSize,
	}
}

// Push records the state before an edit and clears redo history.
func (s *Stack[S]) Push(state S) {
	s.undoStack = pushBounded(s.undoStack, state, s.maxSize)
	s.redoStack = s.redoStack[:0]
}

// Undo returns the most recently pushed state and saves current for Redo.
// It returns the zero value and false if there is nothing to undo.
func (s *Stack[S]) Undo(current S) (S, bool) {
	if len(s.undoStack) == 0 {
		var zero S
		return zero, false
	}
	last := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = pushBounded(s.redoStack, current, s.maxSize)
	return last, true
}

// Redo returns the most recently undone state and saves current for Undo.
func (s *Stack[S]) Redo(current S) (S, bool) {
	if len(s.redoStack) == 0 {
		var zero S
		return zero, false
	}
	last := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = pushBounded(s.undoStack, current, s.maxSize)
	return last, true
}

// CanUndo returns true if there are states to undo.
func (s *Stack[S]) CanUndo() bool {
	return len(s.undoStack) > 0
}

// CanRedo returns true if there are states to redo.
func (s *Stack[S]) CanRedo() bool {
	return len(s.redoStack) > 0
}

// Len returns the undo and redo depths.
func (s *Stack[S]) Len() (undo, redo int) {
	return len(s.undoStack), len(s.redoStack)
}

func pushBounded[S any](stack []S, state S, maxSize int) []S {
	if len(stack) >= maxSize {
		// Evict oldest
		stack = stack[1:]
	}
	return append(stack, state)
}
