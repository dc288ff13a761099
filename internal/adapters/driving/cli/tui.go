package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive review console",
	Long: `Launch the interactive terminal console for reviewing complaints.
Requires an operator session.

Controls:
  ↑/k, ↓/j - Navigate complaints
  Enter    - Open complaint
  s, c, u  - Cycle status, category and minimum urgency filters
  x        - Show or hide flagged spam
  /        - Search complaint text
  1, 2, 3  - Mark pending, in review or resolved
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp builds the console app bound to the operator session.
func newTUIApp(cmd *cobra.Command) (*tui.App, error) {
	if queryService == nil {
		return nil, errors.New("query service not configured")
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return nil, err
	}

	app, err := tui.NewApp(tui.NewPorts(queryService, settingsService))
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app.WithContext(ctx), nil
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI crashed: %v", r)
		}
	}()

	app, err := newTUIApp(cmd)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
