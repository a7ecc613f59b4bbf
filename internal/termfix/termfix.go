// ABOUTME: Pre-sets lipgloss dark background before BubbleTea's init() sends OSC queries
// ABOUTME: Imported (with _) by the intentd binary ahead of the interactive editor

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// With an explicit background lipgloss skips the OSC 10/11 query, whose
	// late reply would otherwise arrive as keystrokes in the scratch editor
	// and be counted as edits. This package must not import bubbletea.
	lipgloss.SetHasDarkBackground(true)
}
