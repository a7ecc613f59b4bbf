// ABOUTME: Entry point for the interactive scratch editor
// ABOUTME: Starts the engine, forwards transitions from the bus into the program, blocks until exit

package interactive

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/intentd/internal/eventbus"
	"github.com/mauromedda/intentd/internal/intent"
	"github.com/mauromedda/intentd/internal/statusline"
)

// Deps holds what the interactive mode needs from the host.
type Deps struct {
	Engine *intent.Engine
	Bus    *eventbus.Bus[intent.Transition]
	Badge  statusline.Badge
}

// Run starts the scratch editor. Blocks until the user quits or ctx ends.
// The engine publishes to the bus while the editor runs and is stopped on
// return.
func Run(ctx context.Context, deps Deps) error {
	m := NewScratchModel(deps.Engine, deps.Badge)

	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithAltScreen(),
	)

	unsubscribe := deps.Bus.Subscribe(func(tr intent.Transition) {
		p.Send(IntentMsg{Transition: tr})
	})
	defer unsubscribe()

	if err := deps.Engine.Start(deps.Bus.Publish); err != nil {
		return fmt.Errorf("start intent engine: %w", err)
	}
	defer deps.Engine.Stop()

	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
