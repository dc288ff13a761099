package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// mockRenderer records what it was asked to render.
type mockRenderer struct {
	format domain.ExportFormat
	err    error
	got    []domain.Complaint
	opts   driven.RenderOptions
}

func (r *mockRenderer) Format() domain.ExportFormat { return r.format }
func (r *mockRenderer) ContentType() string         { return "text/plain" }

func (r *mockRenderer) Render(records []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	r.got, r.opts = records, opts
	if r.err != nil {
		return nil, r.err
	}
	return []byte("rendered"), nil
}

// jsonCodec is a renderer that can also decode its output.
type jsonCodec struct {
	mockRenderer
}

func (c *jsonCodec) Decode(data []byte) ([]domain.Complaint, error) {
	var out []domain.Complaint
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// mockRegistry implements driven.RendererRegistry for testing.
type mockRegistry struct {
	renderers map[domain.ExportFormat]driven.Renderer
}

func newMockRegistry(renderers ...driven.Renderer) *mockRegistry {
	reg := &mockRegistry{renderers: make(map[domain.ExportFormat]driven.Renderer)}
	for _, r := range renderers {
		reg.Register(r)
	}
	return reg
}

func (m *mockRegistry) Register(r driven.Renderer) { m.renderers[r.Format()] = r }

func (m *mockRegistry) Get(format domain.ExportFormat) (driven.Renderer, error) {
	if r, ok := m.renderers[format]; ok {
		return r, nil
	}
	return nil, domain.ErrUnsupportedType
}

func (m *mockRegistry) Formats() []domain.ExportFormat {
	out := make([]domain.ExportFormat, 0, len(m.renderers))
	for f := range m.renderers {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func newTestExport(t *testing.T, renderers ...driven.Renderer) (*ExportService, *memory.ComplaintStore) {
	t.Helper()
	store := memory.NewComplaintStore()
	svc := NewExportService(newMockRegistry(renderers...), store, nil, ExportConfig{
		MinConfidence: domain.DefaultMinConfidence,
		SpamThreshold: domain.DefaultSpamThreshold,
	})
	svc.SetClock(fixedClock)
	return svc, store
}

func TestExport_RendersRecords(t *testing.T) {
	csv := &mockRenderer{format: domain.FormatCSV}
	svc, _ := newTestExport(t, csv)
	records := summaryRecords()

	artifact, err := svc.Export(operatorCtx(), slices.Values(records), domain.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), artifact.Data)
	assert.Equal(t, "complaints_csv_20260415_093000.csv", artifact.Filename)
	assert.Equal(t, 5, artifact.RecordCount)
	assert.Equal(t, testNow, artifact.GeneratedAt)
	assert.Equal(t, records, csv.got)
	assert.Nil(t, csv.opts.Summary)
	assert.InDelta(t, domain.DefaultMinConfidence, csv.opts.MinConfidence, 1e-9)
}

func TestExport_ReportFormatsCarrySummary(t *testing.T) {
	for _, format := range []domain.ExportFormat{domain.FormatSummary, domain.FormatHTML, domain.FormatPDF, domain.FormatStats} {
		t.Run(string(format), func(t *testing.T) {
			r := &mockRenderer{format: format}
			svc, _ := newTestExport(t, r)

			_, err := svc.Export(operatorCtx(), slices.Values(summaryRecords()), format)

			require.NoError(t, err)
			require.NotNil(t, r.opts.Summary)
			assert.Equal(t, 5, r.opts.Summary.Stats.Total)
			if format == domain.FormatStats {
				assert.Empty(t, r.opts.Summary.Narrative)
			} else {
				assert.Equal(t, domain.NarrativeLocal, r.opts.Summary.NarrativeSource)
			}
		})
	}
}

func TestExport_NoDataForSummaryAndStats(t *testing.T) {
	for _, format := range []domain.ExportFormat{domain.FormatSummary, domain.FormatStats} {
		t.Run(string(format), func(t *testing.T) {
			r := &mockRenderer{format: format}
			svc, _ := newTestExport(t, r)

			_, err := svc.Export(operatorCtx(), slices.Values([]domain.Complaint{}), format)

			var exportErr *domain.ExportError
			require.ErrorAs(t, err, &exportErr)
			assert.Equal(t, "no data", exportErr.Reason)
			assert.ErrorIs(t, err, domain.ErrNoData)
			assert.ErrorIs(t, err, domain.ErrExport)
			assert.Nil(t, r.got, "renderer is not called")
		})
	}
}

func TestExport_EmptySetIsFineForListings(t *testing.T) {
	r := &mockRenderer{format: domain.FormatCSV}
	svc, _ := newTestExport(t, r)

	artifact, err := svc.Export(operatorCtx(), slices.Values([]domain.Complaint{}), domain.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, 0, artifact.RecordCount)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	svc, _ := newTestExport(t)

	_, err := svc.Export(operatorCtx(), slices.Values(summaryRecords()), domain.FormatPDF)

	assert.ErrorIs(t, err, domain.ErrExport)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestExport_RenderFailure(t *testing.T) {
	svc, _ := newTestExport(t, &mockRenderer{format: domain.FormatText, err: errors.New("template broke")})

	_, err := svc.Export(operatorCtx(), slices.Values(summaryRecords()), domain.FormatText)

	var exportErr *domain.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "render failure", exportErr.Reason)
}

func TestExport_RequiresOperator(t *testing.T) {
	r := &mockRenderer{format: domain.FormatCSV}
	svc, _ := newTestExport(t, r)

	_, err := svc.Export(context.Background(), slices.Values(summaryRecords()), domain.FormatCSV)

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Nil(t, r.got)
}

func TestExport_ToFile(t *testing.T) {
	svc, _ := newTestExport(t, &mockRenderer{format: domain.FormatText})
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := svc.ExportToFile(operatorCtx(), slices.Values(summaryRecords()), domain.FormatText, dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "complaints_text_20260415_093000.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestExport_ToFileWriteFailure(t *testing.T) {
	svc, _ := newTestExport(t, &mockRenderer{format: domain.FormatText})
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := svc.ExportToFile(operatorCtx(), slices.Values(summaryRecords()), domain.FormatText, blocker)

	var exportErr *domain.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "write failure", exportErr.Reason)
	assert.ErrorIs(t, err, domain.ErrWriteFailure)
}

func TestExport_Import(t *testing.T) {
	codec := &jsonCodec{mockRenderer{format: domain.FormatJSON}}
	svc, store := newTestExport(t, codec)

	existing := complaintAt("a", domain.CategoryHarassment, domain.UrgencyHigh, testNow)
	require.NoError(t, store.Append(context.Background(), &existing))

	data, err := json.Marshal(summaryRecords())
	require.NoError(t, err)

	added, err := svc.Import(operatorCtx(), data)

	require.NoError(t, err)
	assert.Equal(t, 4, added, "existing id is skipped")
	all, _ := store.All(context.Background())
	assert.Len(t, all, 5)
}

func TestExport_ImportRejectsInvalidRecord(t *testing.T) {
	codec := &jsonCodec{mockRenderer{format: domain.FormatJSON}}
	svc, _ := newTestExport(t, codec)

	bad := summaryRecords()[:1]
	bad[0].Category = "Gossip"
	data, err := json.Marshal(bad)
	require.NoError(t, err)

	_, err = svc.Import(operatorCtx(), data)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExport_ImportInvalidRecordStoresNothing(t *testing.T) {
	codec := &jsonCodec{mockRenderer{format: domain.FormatJSON}}
	svc, store := newTestExport(t, codec)

	records := summaryRecords()[:2]
	records[1].Category = "Nope"
	data, err := json.Marshal(records)
	require.NoError(t, err)

	added, err := svc.Import(operatorCtx(), data)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, added)
	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExport_ImportNeedsDecoder(t *testing.T) {
	svc, _ := newTestExport(t, &mockRenderer{format: domain.FormatJSON})

	_, err := svc.Import(operatorCtx(), []byte("[]"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestExport_Formats(t *testing.T) {
	svc, _ := newTestExport(t, &mockRenderer{format: domain.FormatText}, &mockRenderer{format: domain.FormatCSV})

	assert.Equal(t, []domain.ExportFormat{domain.FormatCSV, domain.FormatText}, svc.Formats())
}
