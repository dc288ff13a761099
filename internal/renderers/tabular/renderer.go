// Package tabular renders complaints as CSV with a fixed column order.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Columns is the fixed header of the tabular export.
var Columns = []string{"id", "category", "urgency", "status", "created_at"}

// Renderer writes one CSV row per complaint.
type Renderer struct{}

// New creates a new tabular renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatCSV
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render produces the CSV export. Values are written raw; the
// suggestion marker belongs to human-readable formats only.
func (r *Renderer) Render(records []domain.Complaint, _ driven.RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		c := &records[i]
		row := []string{
			c.ID,
			c.Category.String(),
			c.Urgency.String(),
			c.Status.String(),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %s: %w", c.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
