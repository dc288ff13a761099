package mcp

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// mockIntakeService is a mock implementation of driving.IntakeService.
type mockIntakeService struct {
	complaint *domain.Complaint
	err       error
	gotText   string
}

func (m *mockIntakeService) Submit(_ context.Context, text string) (*domain.Complaint, error) {
	m.gotText = text
	return m.complaint, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
// It records whether calls carried an operator session.
type mockQueryService struct {
	complaints []domain.Complaint
	history    []domain.StatusChange
	stats      *domain.Stats
	err        error

	gotSpec    domain.FilterSpec
	hadSession bool
}

func (m *mockQueryService) note(ctx context.Context) {
	_, m.hadSession = domain.SessionFromContext(ctx)
}

func (m *mockQueryService) Query(ctx context.Context, spec domain.FilterSpec) (iter.Seq[domain.Complaint], error) {
	m.note(ctx)
	m.gotSpec = spec
	return slices.Values(m.complaints), m.err
}

func (m *mockQueryService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	m.note(ctx)
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.complaints {
		if m.complaints[i].ID == id {
			c := m.complaints[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockQueryService) UpdateStatus(
	_ context.Context, _ string, _ domain.Status, _ string,
) (*domain.Complaint, error) {
	return nil, m.err
}

func (m *mockQueryService) History(ctx context.Context, _ string) ([]domain.StatusChange, error) {
	m.note(ctx)
	return m.history, m.err
}

func (m *mockQueryService) Stats(ctx context.Context, spec domain.FilterSpec) (*domain.Stats, error) {
	m.note(ctx)
	m.gotSpec = spec
	return m.stats, m.err
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	data []byte
	err  error
}

func (m *mockExportService) Export(
	_ context.Context, records iter.Seq[domain.Complaint], format domain.ExportFormat,
) (*domain.Artifact, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := 0
	for range records {
		n++
	}
	return &domain.Artifact{
		Format:      format,
		Data:        m.data,
		Filename:    "complaints." + format.Extension(),
		ContentType: "text/plain",
		RecordCount: n,
	}, nil
}

func (m *mockExportService) ExportToFile(
	_ context.Context, _ iter.Seq[domain.Complaint], _ domain.ExportFormat, _ string,
) (string, error) {
	return "", m.err
}

func (m *mockExportService) Import(_ context.Context, _ []byte) (int, error) {
	return 0, m.err
}

func (m *mockExportService) Formats() []domain.ExportFormat {
	return domain.AllExportFormats()
}

// mockOperatorService is a mock implementation of driving.OperatorService.
// Resume succeeds unless err is set.
type mockOperatorService struct {
	err error
}

func (m *mockOperatorService) Login(_ context.Context, _, _ string) (*domain.Session, error) {
	return nil, m.err
}

func (m *mockOperatorService) Resume(ctx context.Context) (context.Context, error) {
	if m.err != nil {
		return ctx, m.err
	}
	return domain.ContextWithSession(ctx, &domain.Session{
		Operator:  "admin",
		ExpiresAt: time.Now().Add(time.Hour),
	}), nil
}

func (m *mockOperatorService) Logout() error {
	return m.err
}

func (m *mockOperatorService) ChangeCredentials(_ context.Context, _, _, _ string) error {
	return m.err
}

func (m *mockOperatorService) IsConfigured() bool {
	return true
}

func sampleComplaints() []domain.Complaint {
	created := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	return []domain.Complaint{
		{
			ID: "a1b2c3d4e5f60718", Text: "My supervisor keeps making offensive remarks",
			Category: domain.CategoryHarassment, Urgency: domain.UrgencyHigh,
			Sentiment: domain.Sentiment{Label: domain.SentimentNegative, Magnitude: 0.6},
			Status:    domain.StatusPending, CreatedAt: created, Confidence: 0.82, SpamScore: 0.1,
		},
		{
			ID: "0f1e2d3c4b5a6978", Text: "The fire exit on floor two is blocked",
			Category: domain.CategorySafety, Urgency: domain.UrgencyCritical,
			Sentiment: domain.Sentiment{Label: domain.SentimentNegative, Magnitude: 0.4},
			Status:    domain.StatusInReview, CreatedAt: created.Add(time.Hour), Confidence: 0.9, SpamScore: 0.05,
		},
	}
}

func fullPorts() (*Ports, *mockQueryService) {
	query := &mockQueryService{complaints: sampleComplaints()}
	return &Ports{
		Intake:   &mockIntakeService{},
		Query:    query,
		Export:   &mockExportService{data: []byte("report")},
		Operator: &mockOperatorService{},
	}, query
}
