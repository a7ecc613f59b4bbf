// ABOUTME: Key bindings for the scratch editor, rendered by bubbles/help in the footer
// ABOUTME: Text entry keys are handled directly; these are the command keys

package interactive

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Undo       key.Binding
	Redo       key.Binding
	DeleteWord key.Binding
	Backspace  key.Binding
	Newline    key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	LineStart  key.Binding
	LineEnd    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
		Undo:       key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "delete word")),
		Backspace:  key.NewBinding(key.WithKeys("backspace")),
		Newline:    key.NewBinding(key.WithKeys("enter")),
		Left:       key.NewBinding(key.WithKeys("left")),
		Right:      key.NewBinding(key.WithKeys("right")),
		Up:         key.NewBinding(key.WithKeys("up")),
		Down:       key.NewBinding(key.WithKeys("down")),
		LineStart:  key.NewBinding(key.WithKeys("home", "ctrl+a")),
		LineEnd:    key.NewBinding(key.WithKeys("end", "ctrl+e")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Undo, k.Redo, k.DeleteWord, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
