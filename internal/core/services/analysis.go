package services

import (
	"context"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService lets an operator try the analyzer without storing anything.
type AnalysisService struct {
	analyzer driven.TextAnalyzer
	now      func() time.Time
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(analyzer driven.TextAnalyzer) *AnalysisService {
	return &AnalysisService{analyzer: analyzer, now: time.Now}
}

// Preview classifies text for an operator.
func (s *AnalysisService) Preview(ctx context.Context, text string) (*domain.Analysis, error) {
	if _, err := domain.RequireOperator(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, text)
}
