// ABOUTME: ScratchModel is a Bubble Tea editor whose keystrokes feed the intent engine
// ABOUTME: Typing, deletes, undo/redo, and cursor keys become telemetry; the footer shows the badge

package interactive

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/intentd/internal/intent"
	"github.com/mauromedda/intentd/internal/statusline"
	"github.com/mauromedda/intentd/internal/undo"
)

const scratchUndoDepth = 200

// CursorMarker is the visible block cursor character.
const CursorMarker = "█"

// Recorder receives editor telemetry. *intent.Engine satisfies it.
type Recorder interface {
	RecordChange(c intent.Change)
	RecordCursorMove()
}

// IntentMsg delivers an engine transition to the UI.
type IntentMsg struct {
	Transition intent.Transition
}

// snapshot is a buffer state kept for undo/redo.
type snapshot struct {
	text []rune
	pos  int
}

// ScratchModel is a multi-line scratch buffer. The undo stack is a pointer
// shared across value copies; only one copy is live at a time.
type ScratchModel struct {
	text     []rune
	pos      int
	history  *undo.Stack[snapshot]
	recorder Recorder
	keys     keyMap
	help     help.Model

	badge    statusline.Badge
	previous intent.Intent
	rule     intent.Rule
	width    int
	height   int
}

// NewScratchModel creates an empty buffer reporting to rec.
func NewScratchModel(rec Recorder, badge statusline.Badge) ScratchModel {
	return ScratchModel{
		history:  undo.New[snapshot](scratchUndoDepth),
		recorder: rec,
		keys:     defaultKeyMap(),
		help:     help.New(),
		badge:    badge,
	}
}

// Init returns nil; no commands needed at startup.
func (m ScratchModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, window size, and intent transitions.
func (m ScratchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case IntentMsg:
		m.badge.Intent = msg.Transition.To
		m.previous = msg.Transition.From
		m.rule = msg.Transition.Rule
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m ScratchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case msg.Type == tea.KeyRunes:
		m.insert(msg.Runes)
	case msg.Type == tea.KeySpace:
		m.insert([]rune{' '})
	case msg.Type == tea.KeyTab:
		m.insert([]rune{'\t'})
	case key.Matches(msg, k.Newline):
		m.insert([]rune{'\n'})
	case key.Matches(msg, k.Backspace):
		m.deleteBack(1)
	case key.Matches(msg, k.DeleteWord):
		m.deleteBack(m.pos - wordStart(m.text, m.pos))
	case key.Matches(msg, k.Undo):
		m.restore(true)
	case key.Matches(msg, k.Redo):
		m.restore(false)
	case key.Matches(msg, k.Left):
		m.moveTo(m.pos - 1)
	case key.Matches(msg, k.Right):
		m.moveTo(m.pos + 1)
	case key.Matches(msg, k.LineStart):
		m.moveTo(lineStart(m.text, m.pos))
	case key.Matches(msg, k.LineEnd):
		m.moveTo(lineEnd(m.text, m.pos))
	case key.Matches(msg, k.Up):
		m.moveTo(verticalTarget(m.text, m.pos, -1))
	case key.Matches(msg, k.Down):
		m.moveTo(verticalTarget(m.text, m.pos, +1))
	}
	return m, nil
}

func (m *ScratchModel) insert(rs []rune) {
	if len(rs) == 0 {
		return
	}
	m.history.Push(m.snapshot())
	text := make([]rune, 0, len(m.text)+len(rs))
	text = append(text, m.text[:m.pos]...)
	text = append(text, rs...)
	text = append(text, m.text[m.pos:]...)
	m.text = text
	m.pos += len(rs)
	m.recorder.RecordChange(intent.Change{InsertedText: string(rs)})
}

func (m *ScratchModel) deleteBack(n int) {
	n = min(n, m.pos)
	if n <= 0 {
		return
	}
	m.history.Push(m.snapshot())
	deleted := intent.CharCount(string(m.text[m.pos-n : m.pos]))
	text := make([]rune, 0, len(m.text)-n)
	text = append(text, m.text[:m.pos-n]...)
	text = append(text, m.text[m.pos:]...)
	m.text = text
	m.pos -= n
	m.recorder.RecordChange(intent.Change{DeletedLength: deleted})
}

// restore applies an undo (or redo) and reports it as one change event.
func (m *ScratchModel) restore(isUndo bool) {
	cur := m.snapshot()
	var (
		s  snapshot
		ok bool
	)
	if isUndo {
		s, ok = m.history.Undo(cur)
	} else {
		s, ok = m.history.Redo(cur)
	}
	if !ok {
		return
	}
	c := changeBetween(cur.text, s.text)
	c.IsUndo = isUndo
	c.IsRedo = !isUndo
	m.text, m.pos = s.text, s.pos
	m.recorder.RecordChange(c)
}

func (m *ScratchModel) moveTo(pos int) {
	pos = max(0, min(pos, len(m.text)))
	if pos == m.pos {
		return
	}
	m.pos = pos
	m.recorder.RecordCursorMove()
}

// snapshot copies the buffer; edits always build a new slice, so sharing
// the backing array is safe.
func (m ScratchModel) snapshot() snapshot {
	return snapshot{text: m.text, pos: m.pos}
}

// Text returns the buffer content.
func (m ScratchModel) Text() string {
	return string(m.text)
}

// Cursor returns the cursor offset in runes.
func (m ScratchModel) Cursor() int {
	return m.pos
}

// Intent returns the intent shown in the footer.
func (m ScratchModel) Intent() intent.Intent {
	return m.badge.Intent
}

var dimStyle = lipgloss.NewStyle().Faint(true)

// View renders the buffer with a cursor, then the intent footer.
func (m ScratchModel) View() string {
	var b strings.Builder
	b.WriteString(string(m.text[:m.pos]))
	b.WriteString(CursorMarker)
	b.WriteString(string(m.text[m.pos:]))
	b.WriteString("\n\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m ScratchModel) footer() string {
	line := m.badge.Render()
	if !m.previous.IsZero() {
		was := "  was " + m.previous.Label + " (" + m.rule.String() + ")"
		if m.width > 0 {
			was = statusline.Truncate(was, m.width-statusline.VisibleWidth(m.badge.Text()))
		}
		line += dimStyle.Render(was)
	}
	return line + "\n" + m.help.View(m.keys)
}

func lineStart(text []rune, pos int) int {
	for pos > 0 && text[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(text []rune, pos int) int {
	for pos < len(text) && text[pos] != '\n' {
		pos++
	}
	return pos
}

// verticalTarget returns the offset one line up (dir < 0) or down, keeping
// the column where the target line is long enough.
func verticalTarget(text []rune, pos, dir int) int {
	start := lineStart(text, pos)
	col := pos - start
	if dir < 0 {
		if start == 0 {
			return pos
		}
		prevStart := lineStart(text, start-1)
		return min(prevStart+col, start-1)
	}
	end := lineEnd(text, pos)
	if end == len(text) {
		return pos
	}
	nextStart := end + 1
	return min(nextStart+col, lineEnd(text, nextStart))
}

func wordStart(text []rune, pos int) int {
	for pos > 0 && isSpace(text[pos-1]) {
		pos--
	}
	for pos > 0 && !isSpace(text[pos-1]) {
		pos--
	}
	return pos
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
