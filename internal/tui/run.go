package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hayeah/repocat/internal/workspace"
)

// Run starts the program on the alternate screen and blocks until the user
// quits. The UI draws on stderr so stdout stays free for piping.
func Run(ctx context.Context, ws *workspace.Workspace, input string) error {
	p := tea.NewProgram(New(ctx, ws, input),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)
	_, err := p.Run()
	return err
}
