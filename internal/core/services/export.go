package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportConfig holds the thresholds renderers annotate records with.
type ExportConfig struct {
	MinConfidence float64
	SpamThreshold float64
}

// ExportService renders complaint sets through the registered renderers.
type ExportService struct {
	registry driven.RendererRegistry
	store    driven.ComplaintStore
	narrator *Narrator
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService creates a new export service.
// The narrator may be nil, in which case summaries use the local narrative.
func NewExportService(
	registry driven.RendererRegistry,
	store driven.ComplaintStore,
	narrator *Narrator,
	cfg ExportConfig,
) *ExportService {
	return &ExportService{
		registry: registry,
		store:    store,
		narrator: narrator,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *ExportService) SetClock(now func() time.Time) {
	s.now = now
}

// Formats lists the available export formats.
func (s *ExportService) Formats() []domain.ExportFormat {
	return s.registry.Formats()
}

// Export renders records in the given format.
func (s *ExportService) Export(
	ctx context.Context, records iter.Seq[domain.Complaint], format domain.ExportFormat,
) (*domain.Artifact, error) {
	now := s.now()
	if _, err := domain.RequireOperator(ctx, now); err != nil {
		return nil, err
	}
	logger.Section("Export")

	renderer, err := s.registry.Get(format)
	if err != nil {
		return nil, domain.NewExportError(format, err)
	}

	list := slices.Collect(records)
	logger.Debug("Rendering %d complaints as %s", len(list), format)
	if format.RequiresData() && len(list) == 0 {
		return nil, domain.NewExportError(format, domain.ErrNoData)
	}

	opts := driven.RenderOptions{
		GeneratedAt:   now,
		MinConfidence: s.cfg.MinConfidence,
		SpamThreshold: s.cfg.SpamThreshold,
	}
	switch format {
	case domain.FormatSummary, domain.FormatHTML, domain.FormatPDF, domain.FormatStats:
		summary := Summarize(list, s.cfg.SpamThreshold, now)
		if format != domain.FormatStats {
			s.narrator.Narrate(ctx, summary)
		}
		opts.Summary = summary
	}

	data, err := renderer.Render(list, opts)
	if err != nil {
		return nil, domain.NewExportError(format, err)
	}

	return &domain.Artifact{
		Format:      format,
		Data:        data,
		Filename:    fmt.Sprintf("complaints_%s_%s.%s", format, now.Format("20060102_150405"), format.Extension()),
		ContentType: renderer.ContentType(),
		RecordCount: len(list),
		GeneratedAt: now,
	}, nil
}

// ExportToFile renders records and writes the artifact under dir.
func (s *ExportService) ExportToFile(
	ctx context.Context, records iter.Seq[domain.Complaint], format domain.ExportFormat, dir string,
) (string, error) {
	artifact, err := s.Export(ctx, records, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", domain.NewExportError(format, fmt.Errorf("%w: create directory: %v", domain.ErrWriteFailure, err))
	}
	path := filepath.Join(dir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
		return "", domain.NewExportError(format, fmt.Errorf("%w: %v", domain.ErrWriteFailure, err))
	}
	logger.Info("Wrote %s (%d bytes)", path, len(artifact.Data))
	return path, nil
}

// Import restores a structured backup, skipping ids already stored.
func (s *ExportService) Import(ctx context.Context, data []byte) (int, error) {
	if _, err := domain.RequireOperator(ctx, s.now()); err != nil {
		return 0, err
	}

	renderer, err := s.registry.Get(domain.FormatJSON)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	decoder, ok := renderer.(driven.Decoder)
	if !ok {
		return 0, fmt.Errorf("import: %w: backup format cannot be decoded", domain.ErrUnsupportedType)
	}

	records, err := decoder.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("import record %d: %w", i, err)
		}
	}

	added := 0
	for i := range records {
		c := &records[i]
		err := s.store.Append(ctx, c)
		switch {
		case err == nil:
			added++
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Debug("Skipping existing complaint %s", c.ID)
		default:
			return added, fmt.Errorf("import %s: %w", c.ID, err)
		}
	}
	logger.Info("Imported %d of %d complaints", added, len(records))
	return added, nil
}
