package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// ExportService renders complaint sets. Every method requires an operator session.
type ExportService interface {
	// Export renders records in the given format.
	// Failures are returned as *domain.ExportError.
	Export(ctx context.Context, records iter.Seq[domain.Complaint], format domain.ExportFormat) (*domain.Artifact, error)

	// ExportToFile renders records and writes the artifact under dir.
	// Returns the written path.
	ExportToFile(ctx context.Context, records iter.Seq[domain.Complaint], format domain.ExportFormat, dir string) (string, error)

	// Import restores a structured backup, skipping ids already stored.
	// Returns the number of complaints added.
	Import(ctx context.Context, data []byte) (int, error)

	// Formats lists the available export formats.
	Formats() []domain.ExportFormat
}
