package console

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the console on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Client == nil || opts.Cache == nil {
		return errors.New("console: client and cache are required")
	}
	m := New(opts)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, progOpts...)...)
	detach := m.Attach(p.Send)
	defer detach()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
