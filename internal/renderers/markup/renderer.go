// Package markup renders complaints as a structured JSON backup that can be
// decoded back into complaints.
package markup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interfaces.
var (
	_ driven.Renderer = (*Renderer)(nil)
	_ driven.Decoder  = (*Renderer)(nil)
)

// SchemaVersion identifies the backup layout.
const SchemaVersion = 1

// Metadata describes a backup.
type Metadata struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Filter      string    `json:"filter,omitempty"`
	Count       int       `json:"count"`
}

// Document is the top-level JSON object of a backup.
type Document struct {
	Metadata   Metadata           `json:"metadata"`
	Complaints []domain.Complaint `json:"complaints"`
}

// Renderer writes and reads the JSON backup format.
type Renderer struct{}

// New creates a new markup renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatJSON
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render produces the JSON backup.
func (r *Renderer) Render(records []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	doc := Document{
		Metadata: Metadata{
			Version:     SchemaVersion,
			GeneratedAt: opts.GeneratedAt.UTC(),
			Filter:      opts.Filter,
			Count:       len(records),
		},
		Complaints: records,
	}
	if doc.Complaints == nil {
		doc.Complaints = []domain.Complaint{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a backup. A bare JSON array of complaints is also accepted.
func (r *Renderer) Decode(data []byte) ([]domain.Complaint, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty backup", domain.ErrInvalidInput)
	}

	if data[0] == '[' {
		var records []domain.Complaint
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: decode backup: %v", domain.ErrInvalidInput, err)
		}
		return records, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode backup: %v", domain.ErrInvalidInput, err)
	}
	if doc.Metadata.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: backup version %d is newer than supported version %d",
			domain.ErrUnsupportedType, doc.Metadata.Version, SchemaVersion)
	}
	return doc.Complaints, nil
}
