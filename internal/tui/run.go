package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat screen and blocks until the user quits or ctx ends.
func Run(ctx context.Context, chat ChatFunc, opts ...Option) error {
	if chat == nil {
		return fmt.Errorf("chat function is required")
	}

	p := tea.NewProgram(NewModel(ctx, chat, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
