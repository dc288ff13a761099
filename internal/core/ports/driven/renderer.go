package driven

import (
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// Renderer turns a materialised complaint set into one export format.
// Renderers are pure: no I/O, no clock reads beyond RenderOptions.
type Renderer interface {
	// Format returns the export format this renderer produces.
	Format() domain.ExportFormat

	// ContentType returns the MIME type of the output.
	ContentType() string

	// Render produces the artifact bytes.
	Render(records []domain.Complaint, opts RenderOptions) ([]byte, error)
}

// RenderOptions carries context shared by all renderers.
type RenderOptions struct {
	// GeneratedAt stamps the output.
	GeneratedAt time.Time

	// Filter describes how the records were selected.
	Filter string

	// MinConfidence marks classifications below it as suggestions.
	MinConfidence float64

	// SpamThreshold marks records above it as flagged.
	SpamThreshold float64

	// Summary holds precomputed aggregates and narrative for report formats.
	Summary *domain.Summary
}

// RendererRegistry dispatches a format to its renderer.
type RendererRegistry interface {
	// Register adds a renderer, replacing any existing one for the same format.
	Register(r Renderer)

	// Get returns the renderer for a format.
	// Returns domain.ErrUnsupportedType if none is registered.
	Get(format domain.ExportFormat) (Renderer, error)

	// Formats returns all registered formats.
	Formats() []domain.ExportFormat
}

// Decoder is implemented by renderers whose output can be read back.
type Decoder interface {
	// Decode parses output previously produced by Render.
	Decode(data []byte) ([]domain.Complaint, error)
}
