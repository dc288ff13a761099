package detail

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	QueryFunc        func(ctx context.Context, spec domain.FilterSpec) (iter.Seq[domain.Complaint], error)
	GetFunc          func(ctx context.Context, id string) (*domain.Complaint, error)
	UpdateStatusFunc func(ctx context.Context, id string, st domain.Status, note string) (*domain.Complaint, error)
	HistoryFunc      func(ctx context.Context, id string) ([]domain.StatusChange, error)
}

func (m *MockQueryService) Query(ctx context.Context, spec domain.FilterSpec) (iter.Seq[domain.Complaint], error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, spec)
	}
	return slices.Values([]domain.Complaint{}), nil
}

func (m *MockQueryService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockQueryService) UpdateStatus(
	ctx context.Context, id string, st domain.Status, note string,
) (*domain.Complaint, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, st, note)
	}
	return nil, nil
}

func (m *MockQueryService) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockQueryService) Stats(_ context.Context, _ domain.FilterSpec) (*domain.Stats, error) {
	return &domain.Stats{}, nil
}

func sample() domain.Complaint {
	return domain.Complaint{
		ID:         "a1",
		Text:       "the fire exits are blocked every night",
		Category:   domain.CategorySafety,
		Urgency:    domain.UrgencyCritical,
		Sentiment:  domain.Sentiment{Label: domain.SentimentNegative, Magnitude: 0.6},
		Status:     domain.StatusPending,
		CreatedAt:  time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		Confidence: 0.3,
		SpamScore:  0.9,
	}
}

func serviceFor(c domain.Complaint, history []domain.StatusChange) *MockQueryService {
	return &MockQueryService{
		GetFunc: func(context.Context, string) (*domain.Complaint, error) {
			cp := c
			return &cp, nil
		},
		HistoryFunc: func(context.Context, string) ([]domain.StatusChange, error) {
			return history, nil
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func exec(t *testing.T, v *View, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &MockQueryService{})

	require.NotNil(t, v)
	assert.Nil(t, v.Complaint())
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No complaint selected")
}

func TestView_SetComplaintLoadsHistory(t *testing.T) {
	history := []domain.StatusChange{{
		ComplaintID: "a1", From: domain.StatusPending, To: domain.StatusInReview,
		Note: "assigned", ChangedAt: time.Date(2026, 4, 16, 10, 0, 0, 0, time.UTC),
	}}
	v := NewView(nil, nil, serviceFor(sample(), history))

	exec(t, v, v.SetComplaint(sample()))

	require.NotNil(t, v.Complaint())
	assert.Len(t, v.History(), 1)
	view := v.View()
	assert.Contains(t, view, "Complaint a1")
	assert.Contains(t, view, "Pending -> In-Review")
	assert.Contains(t, view, "assigned")
}

func TestView_ViewMarkers(t *testing.T) {
	v := NewView(nil, nil, serviceFor(sample(), nil))
	v.SetDimensions(100, 40)
	v.SetThresholds(0.5, 0.7)
	exec(t, v, v.SetComplaint(sample()))

	view := v.View()

	assert.Contains(t, view, "(suggested)")
	assert.Contains(t, view, "(flagged)")
	assert.Contains(t, view, "no status changes")
	assert.Contains(t, view, "fire exits")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, nil, &MockQueryService{})

	exec(t, v, v.SetComplaint(sample()))

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
}

func TestView_MarkResolvedWithNote(t *testing.T) {
	var gotStatus domain.Status
	var gotNote string
	svc := serviceFor(sample(), nil)
	svc.UpdateStatusFunc = func(_ context.Context, id string, st domain.Status, note string) (*domain.Complaint, error) {
		gotStatus, gotNote = st, note
		c := sample()
		c.Status = st
		return &c, nil
	}
	v := NewView(nil, nil, svc)
	exec(t, v, v.SetComplaint(sample()))

	v.Update(runes("3"))
	require.True(t, v.Prompting())
	assert.Contains(t, v.View(), "Note for Resolved")

	v.Update(runes("fixed"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := exec(t, v, cmd)

	updated, ok := msg.(messages.StatusUpdated)
	require.True(t, ok)
	require.NoError(t, updated.Err)
	assert.Equal(t, domain.StatusResolved, gotStatus)
	assert.Equal(t, "fixed", gotNote)
	assert.False(t, v.Prompting())
	assert.Equal(t, domain.StatusResolved, v.Complaint().Status)
}

func TestView_NoteEscCancels(t *testing.T) {
	called := false
	svc := serviceFor(sample(), nil)
	svc.UpdateStatusFunc = func(context.Context, string, domain.Status, string) (*domain.Complaint, error) {
		called = true
		return nil, nil
	}
	v := NewView(nil, nil, svc)
	exec(t, v, v.SetComplaint(sample()))

	v.Update(runes("2"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.Prompting())
	assert.False(t, called)
}

func TestView_UpdateStatusError(t *testing.T) {
	svc := serviceFor(sample(), nil)
	svc.UpdateStatusFunc = func(context.Context, string, domain.Status, string) (*domain.Complaint, error) {
		return nil, domain.ErrAuthRequired
	}
	v := NewView(nil, nil, svc)
	exec(t, v, v.SetComplaint(sample()))

	v.Update(runes("2"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	exec(t, v, cmd)

	assert.ErrorIs(t, v.Err(), domain.ErrAuthRequired)
	assert.Equal(t, domain.StatusPending, v.Complaint().Status)
}

func TestView_MarkWithoutComplaintDoesNothing(t *testing.T) {
	v := NewView(nil, nil, &MockQueryService{})

	_, cmd := v.Update(runes("1"))

	assert.Nil(t, cmd)
	assert.False(t, v.Prompting())
}

func TestView_BackReturnsToList(t *testing.T) {
	v := NewView(nil, nil, &MockQueryService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewComplaints, changed.View)
}

func TestView_ErrorOccurred(t *testing.T) {
	v := NewView(nil, nil, &MockQueryService{})
	boom := errors.New("boom")

	v.Update(messages.ErrorOccurred{Err: boom})

	assert.ErrorIs(t, v.Err(), boom)
}
