package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/views/complaints"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/views/detail"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	complaintsView *complaints.View
	detailView     *detail.View

	// previous is the view to return to when help is closed.
	previous    messages.ViewType
	currentView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	app := &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		complaintsView: complaints.NewView(s, km, ports.Query),
		detailView:     detail.NewView(s, km, ports.Query),
		currentView:    messages.ViewComplaints,
	}
	app.applyThresholds()
	return app, nil
}

func (a *App) applyThresholds() {
	analyzer := domain.DefaultAppSettings().Analyzer
	if a.ports.Settings != nil {
		if settings, err := a.ports.Settings.Get(); err == nil {
			analyzer = settings.Analyzer
		}
	}
	a.complaintsView.SetThresholds(analyzer.MinConfidence, analyzer.SpamThreshold)
	a.detailView.SetThresholds(analyzer.MinConfidence, analyzer.SpamThreshold)
}

// WithContext sets the context for service calls. Review operations need
// an operator session carried by ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.complaintsView.WithContext(ctx)
	a.detailView.WithContext(ctx)
	if session, ok := domain.SessionFromContext(ctx); ok {
		a.complaintsView.SetOperator(session.Operator)
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("whistle - complaint review"),
		a.complaintsView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ComplaintSelected:
		a.currentView = messages.ViewDetail
		return a, a.detailView.SetComplaint(msg.Complaint)

	case messages.ComplaintsLoaded:
		a.err = msg.Err
		a.complaintsView, cmd = a.complaintsView.Update(msg)
		return a, cmd

	case messages.DetailLoaded:
		a.err = msg.Err
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.StatusUpdated:
		// Both views track the record: the list row and the open detail.
		a.err = msg.Err
		a.complaintsView, _ = a.complaintsView.Update(msg)
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewComplaints:
			a.complaintsView, cmd = a.complaintsView.Update(msg)
		case messages.ViewDetail:
			a.detailView, cmd = a.detailView.Update(msg)
		case messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	// Text prompts take every key, including q and ?.
	typing := (a.currentView == messages.ViewComplaints && a.complaintsView.Searching()) ||
		(a.currentView == messages.ViewDetail && a.detailView.Prompting())

	if !typing {
		switch {
		case keymap.Matches(k, a.keymap.Quit):
			return a, tea.Quit
		case a.currentView == messages.ViewHelp:
			if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
				a.currentView = a.previous
			}
			return a, nil
		case keymap.Matches(k, a.keymap.Help):
			a.previous = a.currentView
			a.currentView = messages.ViewHelp
			return a, nil
		}
	}

	switch a.currentView {
	case messages.ViewComplaints:
		a.complaintsView, cmd = a.complaintsView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDetail:
		return a.detailView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewComplaints:
		return a.complaintsView.View()
	default:
		return a.complaintsView.View()
	}
}

// viewHelp renders every keybinding grouped by purpose.
func (a *App) viewHelp() string {
	titles := []string{"Navigation", "Filters", "Review", "General"}
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n")
	for i, group := range a.keymap.FullHelp() {
		b.WriteString("\n")
		if i < len(titles) {
			b.WriteString(a.styles.Subtitle.Render(titles[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.complaintsView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}
