package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func TestServer_handleSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the reference", func(t *testing.T) {
		intake := &mockIntakeService{complaint: &sampleComplaints()[0]}
		server, err := NewServer(&Ports{Intake: intake})
		require.NoError(t, err)

		_, output, err := server.handleSubmit(ctx, nil, SubmitInput{Text: "offensive remarks"})

		require.NoError(t, err)
		assert.Equal(t, "a1b2c3d4e5f60718", output.ID)
		assert.Equal(t, "Pending", output.Status)
		assert.Equal(t, "offensive remarks", intake.gotText)
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		intake := &mockIntakeService{err: errors.Join(domain.ErrInvalidInput, errors.New("text is empty"))}
		server, err := NewServer(&Ports{Intake: intake})
		require.NoError(t, err)

		_, _, err = server.handleSubmit(ctx, nil, SubmitInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("other failures stay generic", func(t *testing.T) {
		intake := &mockIntakeService{err: errors.New("disk full at /var/lib/whistle")}
		server, err := NewServer(&Ports{Intake: intake})
		require.NoError(t, err)

		_, _, err = server.handleSubmit(ctx, nil, SubmitInput{Text: "something happened"})

		require.Error(t, err)
		assert.Equal(t, errSubmitFailed, err)
		assert.NotContains(t, err.Error(), "disk")
	})
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns complaints with a session", func(t *testing.T) {
		ports, query := fullPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, FilterInput{Category: "safety", MinUrgency: "high"})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "Workplace Harassment", output.Complaints[0].Category)
		assert.Equal(t, "2026-04-15T09:00:00Z", output.Complaints[0].CreatedAt)
		assert.True(t, query.hadSession)
		require.NotNil(t, query.gotSpec.Category)
		assert.Equal(t, domain.CategorySafety, *query.gotSpec.Category)
		require.NotNil(t, query.gotSpec.MinUrgency)
		assert.Equal(t, domain.UrgencyHigh, *query.gotSpec.MinUrgency)
		assert.Equal(t, defaultQueryLimit, query.gotSpec.Limit)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		ports, query := fullPorts()
		query.complaints = nil
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, FilterInput{})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Complaints)
	})

	t.Run("requires an operator session", func(t *testing.T) {
		ports, query := fullPorts()
		ports.Operator = &mockOperatorService{err: domain.ErrAuthRequired}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, FilterInput{})

		assert.ErrorIs(t, err, domain.ErrAuthRequired)
		assert.False(t, query.hadSession)
	})

	t.Run("rejects bad filters", func(t *testing.T) {
		ports, _ := fullPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		for _, in := range []FilterInput{
			{Category: "weather"},
			{Status: "closed"},
			{From: "15/04/2026"},
			{From: "2026-05-01", To: "2026-04-01"},
			{Sort: "length"},
		} {
			_, _, err = server.handleQuery(ctx, nil, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
		}
	})
}

func TestFilterInput_Spec(t *testing.T) {
	spec, err := FilterInput{
		Status:        "review",
		Urgency:       "critical",
		From:          "2026-04-01",
		To:            "2026-04-15",
		MinConfidence: domain.Ptr(0.5),
		IncludeSpam:   true,
		Text:          "exit",
		Sort:          "urgency",
		Desc:          true,
		Limit:         5,
	}.spec()

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, *spec.Status)
	assert.Equal(t, domain.UrgencyCritical, *spec.Urgency)
	assert.Equal(t, "2026-04-01T00:00:00Z", spec.From.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, "2026-04-15 23:59:59", spec.To.Format("2006-01-02 15:04:05"))
	assert.InDelta(t, 0.5, *spec.MinConfidence, 1e-9)
	assert.True(t, spec.IncludeFlaggedSpam)
	assert.Equal(t, domain.SortUrgency, spec.Sort)
	assert.True(t, spec.Desc)
	assert.Equal(t, 5, spec.Limit)
}

func TestServer_handleExport(t *testing.T) {
	ctx := context.Background()

	t.Run("text formats are returned verbatim", func(t *testing.T) {
		ports, _ := fullPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleExport(ctx, nil, ExportInput{Format: "summary"})

		require.NoError(t, err)
		assert.Equal(t, "summary", output.Format)
		assert.Equal(t, "utf-8", output.Encoding)
		assert.Equal(t, "report", output.Content)
		assert.Equal(t, 2, output.RecordCount)
	})

	t.Run("binary formats are base64 encoded", func(t *testing.T) {
		ports, _ := fullPorts()
		pdf := []byte{0x25, 0x50, 0x44, 0x46, 0xff, 0xfe}
		ports.Export = &mockExportService{data: pdf}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleExport(ctx, nil, ExportInput{Format: "pdf"})

		require.NoError(t, err)
		assert.Equal(t, "base64", output.Encoding)
		decoded, err := base64.StdEncoding.DecodeString(output.Content)
		require.NoError(t, err)
		assert.Equal(t, pdf, decoded)
	})

	t.Run("stats include flagged spam", func(t *testing.T) {
		ports, query := fullPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "stats"})
		require.NoError(t, err)
		assert.True(t, query.gotSpec.IncludeFlaggedSpam)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "csv"})
		require.NoError(t, err)
		assert.False(t, query.gotSpec.IncludeFlaggedSpam)
	})

	t.Run("unknown format", func(t *testing.T) {
		ports, _ := fullPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "docx"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("export errors pass through", func(t *testing.T) {
		ports, _ := fullPorts()
		ports.Export = &mockExportService{err: domain.NewExportError(domain.FormatSummary, domain.ErrNoData)}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "summary"})

		assert.ErrorIs(t, err, domain.ErrNoData)
		var exportErr *domain.ExportError
		assert.ErrorAs(t, err, &exportErr)
	})
}
