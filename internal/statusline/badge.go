// ABOUTME: Intent badge rendering: emoji plus label tinted with the intent color
// ABOUTME: Compact form shows the emoji only; optional fixed cell width with grapheme-safe truncation

package statusline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/intentd/internal/intent"
)

const ellipsis = "…"

// Badge renders an intent as a status line pill.
type Badge struct {
	Intent  intent.Intent
	Compact bool
	Width   int // pad or truncate to this many cells when > 0

	renderer *lipgloss.Renderer
}

// NewBadge creates a badge for the intent with the given key; unknown keys
// render as exploring.
func NewBadge(key string, compact bool, width int) Badge {
	return Badge{
		Intent:  intent.ParseOrDefault(key),
		Compact: compact,
		Width:   width,
	}
}

// WithRenderer returns a copy of b that styles with r instead of the
// default renderer.
func (b Badge) WithRenderer(r *lipgloss.Renderer) Badge {
	b.renderer = r
	return b
}

// Text returns the unstyled badge content, padded or truncated to Width.
func (b Badge) Text() string {
	i := b.Intent
	if i.IsZero() {
		i = intent.Exploring
	}
	text := i.Emoji
	if !b.Compact {
		text += " " + i.Label
	}
	if b.Width <= 0 {
		return text
	}

	w := VisibleWidth(text)
	switch {
	case w < b.Width:
		return text + strings.Repeat(" ", b.Width-w)
	case w > b.Width:
		return Truncate(text, b.Width)
	default:
		return text
	}
}

// Render returns the badge styled in the intent color.
func (b Badge) Render() string {
	i := b.Intent
	if i.IsZero() {
		i = intent.Exploring
	}
	r := b.renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	style := r.NewStyle().
		Foreground(lipgloss.Color(i.Color)).
		Bold(true)
	return style.Render(b.Text())
}

// Title returns the hover text, e.g. "Currently Building".
func (b Badge) Title() string {
	i := b.Intent
	if i.IsZero() {
		i = intent.Exploring
	}
	return "Currently " + i.Label
}
