package driving

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// IntakeService accepts anonymous complaint submissions.
type IntakeService interface {
	// Submit validates, classifies and stores a complaint.
	// Submitters only ever see domain.ErrInvalidInput or domain.ErrSubmissionFailed.
	Submit(ctx context.Context, text string) (*domain.Complaint, error)
}

// AnalysisService runs the analyzer without persisting anything.
type AnalysisService interface {
	// Preview classifies text for an operator. Requires an operator session.
	Preview(ctx context.Context, text string) (*domain.Analysis, error)
}
