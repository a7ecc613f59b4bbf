// ABOUTME: Prints the intent catalog as a glamour-rendered table or plain TSV
// ABOUTME: TSV when output is not a terminal so scripts can consume it

package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mauromedda/intentd/internal/intent"
)

// Markdown returns the intents as a markdown table.
func Markdown(intents []intent.Intent) string {
	var b strings.Builder
	b.WriteString("| | Key | Label | Color |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, i := range intents {
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n", i.Emoji, i.Key, i.Label, i.Color)
	}
	return b.String()
}

// WriteTSV writes one line per intent: key, label, emoji, color.
func WriteTSV(w io.Writer, intents []intent.Intent) error {
	for _, i := range intents {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.Key, i.Label, i.Emoji, i.Color); err != nil {
			return fmt.Errorf("writing catalog: %w", err)
		}
	}
	return nil
}

// WriteStyled renders the markdown table for a terminal of the given width.
// It falls back to the raw markdown when glamour cannot render.
func WriteStyled(w io.Writer, intents []intent.Intent, width int) error {
	md := Markdown(intents)
	out := md
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if rendered, rerr := renderer.Render(md); rerr == nil {
			out = strings.TrimRight(rendered, "\n ") + "\n"
		}
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
