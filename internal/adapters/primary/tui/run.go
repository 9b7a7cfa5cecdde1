package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the preview and blocks until the user quits or ctx ends
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	m.Scheduler().Bind(p.Send)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running preview: %w", err)
	}

	return m.Err()
}
