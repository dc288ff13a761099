// Package complaints provides the filtered complaint list view for the TUI.
package complaints

import (
	"context"
	"errors"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// ErrNoQueryService indicates that no query service was provided.
var ErrNoQueryService = errors.New("query service is required")

// listLimit caps how many complaints one load pulls into memory.
const listLimit = 500

// View is the complaint list with interactive filters.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	query  driving.QueryService
	ctx    context.Context

	list   *list.ComplaintList
	bar    *status.Bar
	search *input.PromptInput

	filter    domain.FilterSpec
	searching bool
	loading   bool
	err       error
	width     int
	height    int
}

// NewView creates a new complaint list view.
func NewView(s *styles.Styles, km *keymap.KeyMap, query driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	search := input.NewPromptInput(s, "Search", "keyword in complaint text")
	search.Blur()

	return &View{
		styles: s,
		keymap: km,
		query:  query,
		ctx:    context.Background(),
		list:   list.NewComplaintList(s),
		bar:    status.NewBar(s, km, status.ModeList),
		search: search,
		filter: domain.FilterSpec{Sort: domain.SortCreatedAt, Desc: true, Limit: listLimit},
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetThresholds passes the analyzer thresholds to the list markers.
func (v *View) SetThresholds(minConfidence, spamThreshold float64) {
	v.list.SetThresholds(minConfidence, spamThreshold)
}

// SetOperator shows the session owner in the status bar.
func (v *View) SetOperator(name string) {
	v.bar.SetOperator(name)
}

// Init loads the complaints for the current filter.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	v.bar.Loading()
	spec := v.filter
	ctx := v.ctx
	return func() tea.Msg {
		if v.query == nil {
			return messages.ComplaintsLoaded{Filter: spec, Err: ErrNoQueryService}
		}
		seq, err := v.query.Query(ctx, spec)
		if err != nil {
			return messages.ComplaintsLoaded{Filter: spec, Err: err}
		}
		return messages.ComplaintsLoaded{Complaints: slices.Collect(seq), Filter: spec}
	}
}

// Update handles messages for the complaint list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.searching {
			return v.handleSearchKey(msg)
		}
		return v.handleKey(msg)

	case messages.ComplaintsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.bar.Failed(msg.Err)
			return v, nil
		}
		v.err = nil
		v.list.SetComplaints(msg.Complaints)
		v.bar.Loaded(len(msg.Complaints))
		return v, nil

	case messages.StatusUpdated:
		if msg.Err == nil && msg.Complaint != nil {
			v.list.Replace(*msg.Complaint)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.bar.Failed(msg.Err)
		return v, nil
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up), keymap.Matches(k, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
	case keymap.Matches(k, v.keymap.Select):
		if c := v.list.SelectedComplaint(); c != nil {
			selected := *c
			return v, func() tea.Msg { return messages.ComplaintSelected{Complaint: selected} }
		}
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.load()
	case keymap.Matches(k, v.keymap.CycleStatus):
		v.filter.Status = cycle(v.filter.Status, domain.AllStatuses())
		return v, v.load()
	case keymap.Matches(k, v.keymap.CycleCategory):
		v.filter.Category = cycle(v.filter.Category, domain.AllCategories())
		return v, v.load()
	case keymap.Matches(k, v.keymap.CycleUrgency):
		v.filter.MinUrgency = cycle(v.filter.MinUrgency, domain.AllUrgencies())
		return v, v.load()
	case keymap.Matches(k, v.keymap.ToggleSpam):
		v.filter.IncludeFlaggedSpam = !v.filter.IncludeFlaggedSpam
		return v, v.load()
	case keymap.Matches(k, v.keymap.Search):
		v.searching = true
		v.search.SetValue(v.filter.Text)
		return v, v.search.Focus()
	}
	return v, nil
}

func (v *View) handleSearchKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.searching = false
		v.search.Blur()
		v.filter.Text = strings.TrimSpace(v.search.Value())
		return v, v.load()
	case tea.KeyEsc:
		v.searching = false
		v.search.Blur()
		return v, nil
	default:
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
}

// cycle advances an optional filter value through values, wrapping back to nil.
func cycle[T comparable](cur *T, values []T) *T {
	if cur == nil {
		return domain.Ptr(values[0])
	}
	i := slices.Index(values, *cur)
	if i < 0 || i == len(values)-1 {
		return nil
	}
	return domain.Ptr(values[i+1])
}

// View renders the complaint list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Complaints"))
	b.WriteString("\n")
	b.WriteString(v.styles.FilterBar.Render("Filter: " + v.filter.Describe()))
	b.WriteString("\n\n")

	if v.searching {
		b.WriteString(v.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading && v.list.IsEmpty():
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")
	b.WriteString(v.bar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-8)
	v.bar.SetWidth(width)
	v.search.SetWidth(width)
}

// Filter returns the active filter.
func (v *View) Filter() domain.FilterSpec {
	return v.filter
}

// Searching reports whether the search prompt is open.
func (v *View) Searching() bool {
	return v.searching
}

// List returns the underlying complaint list.
func (v *View) List() *list.ComplaintList {
	return v.list
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
