// Package plaintext renders complaints as human-readable text blocks.
package plaintext

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/renderers/labels"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

const (
	wrapWidth = 76
	separator = "------------------------------------------------------------------------------"
)

// Renderer writes one block per complaint.
type Renderer struct{}

// New creates a new plain text renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatText
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render produces the text export.
func (r *Renderer) Render(records []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	var b strings.Builder

	b.WriteString("WHISTLE COMPLAINT EXPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", labels.Time(opts.GeneratedAt))
	fmt.Fprintf(&b, "Filter:    %s\n", labels.Filter(opts))
	fmt.Fprintf(&b, "Records:   %d\n", len(records))

	if len(records) == 0 {
		b.WriteString("\nNo complaints match the selected filter.\n")
		return []byte(b.String()), nil
	}

	for i := range records {
		c := &records[i]
		b.WriteString("\n" + separator + "\n")
		fmt.Fprintf(&b, "Complaint %d of %d\n", i+1, len(records))
		fmt.Fprintf(&b, "ID:         %s\n", c.ID)
		fmt.Fprintf(&b, "Created:    %s\n", labels.Time(c.CreatedAt))
		fmt.Fprintf(&b, "Category:   %s\n", labels.Category(c, opts))
		fmt.Fprintf(&b, "Urgency:    %s\n", labels.Urgency(c, opts))
		fmt.Fprintf(&b, "Status:     %s\n", c.Status)
		fmt.Fprintf(&b, "Sentiment:  %s\n", labels.Sentiment(c.Sentiment))
		fmt.Fprintf(&b, "Confidence: %.2f\n", c.Confidence)
		spam := fmt.Sprintf("%.2f", c.SpamScore)
		if labels.Flagged(c, opts) {
			spam += " [FLAGGED AS POSSIBLE SPAM]"
		}
		fmt.Fprintf(&b, "Spam score: %s\n\n", spam)

		for _, line := range labels.Wrap(c.Text, wrapWidth) {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString(separator + "\n")

	return []byte(b.String()), nil
}
