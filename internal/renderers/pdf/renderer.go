// Package pdf renders a printable complaint report with gofpdf.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/renderers/labels"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

const (
	fontFamily  = "Helvetica"
	lineHeight  = 6
	pageWidth   = 190 // A4 minus default 10mm margins
	excerptRune = 140
)

// Renderer writes the PDF report.
type Renderer struct{}

// New creates a new PDF renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatPDF
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "application/pdf"
}

// Render produces the PDF report. When opts.Summary is set the report
// opens with the narrative and aggregate tables.
func (r *Renderer) Render(records []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Whistle complaint report", true)
	pdf.SetCreator("whistle", true)
	if !opts.GeneratedAt.IsZero() {
		pdf.SetCreationDate(opts.GeneratedAt)
		pdf.SetModificationDate(opts.GeneratedAt)
	}
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.Cell(0, 10, "Whistle complaint report")
	pdf.Ln(11)
	pdf.SetFont(fontFamily, "", 10)
	pdf.Cell(0, lineHeight, tr(fmt.Sprintf("Generated %s - Filter: %s - %d complaint(s)",
		labels.Time(opts.GeneratedAt), labels.Filter(opts), len(records))))
	pdf.Ln(lineHeight + 4)

	if s := opts.Summary; s != nil {
		writeSummary(pdf, tr, s)
	}

	heading(pdf, "Complaints")
	if len(records) == 0 {
		pdf.SetFont(fontFamily, "", 10)
		pdf.Cell(0, lineHeight, "No complaints match the selected filter.")
		pdf.Ln(lineHeight)
	}
	for i := range records {
		writeRecord(pdf, tr, &records[i], opts)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func writeSummary(pdf *gofpdf.Fpdf, tr func(string) string, s *domain.Summary) {
	if s.Narrative != "" {
		heading(pdf, "Overview")
		pdf.SetFont(fontFamily, "", 10)
		pdf.MultiCell(pageWidth, lineHeight, tr(s.Narrative), "", "L", false)
		pdf.Ln(3)
	}

	st := &s.Stats
	heading(pdf, "Key figures")
	pdf.SetFont(fontFamily, "", 10)
	if st.Total > 0 {
		pdf.Cell(0, lineHeight, fmt.Sprintf("Period: %s to %s (%.1f per month), trend %s",
			st.First.UTC().Format(time.DateOnly), st.Last.UTC().Format(time.DateOnly), st.PerMonth, s.Direction))
		pdf.Ln(lineHeight)
	}
	pdf.Cell(0, lineHeight, fmt.Sprintf("Flagged as possible spam: %d - critical cases: %d",
		st.FlaggedSpam, len(s.Critical)))
	pdf.Ln(lineHeight + 3)

	var cats, urgs [][2]string
	for _, c := range domain.AllCategories() {
		if n := st.ByCategory[c]; n > 0 {
			cats = append(cats, [2]string{c.String(), fmt.Sprintf("%d (%s)", n, labels.Percent(st, n))})
		}
	}
	for _, u := range domain.AllUrgencies() {
		if n := st.ByUrgency[u]; n > 0 {
			urgs = append(urgs, [2]string{u.String(), fmt.Sprintf("%d (%s)", n, labels.Percent(st, n))})
		}
	}
	table(pdf, tr, "Category", cats)
	table(pdf, tr, "Urgency", urgs)
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows [][2]string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(238, 241, 245)
	pdf.CellFormat(70, 7, title, "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Count", "1", 1, "L", true, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	for _, row := range rows {
		pdf.CellFormat(70, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeRecord(pdf *gofpdf.Fpdf, tr func(string) string, c *domain.Complaint, opts driven.RenderOptions) {
	pdf.SetFont(fontFamily, "B", 10)
	if c.Urgency == domain.UrgencyCritical {
		pdf.SetTextColor(176, 0, 32)
	}
	pdf.Cell(0, lineHeight, tr(fmt.Sprintf("%s - %s - %s", c.ID, labels.Category(c, opts), labels.Urgency(c, opts))))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "", 9)
	meta := fmt.Sprintf("%s - %s - confidence %.2f - spam %.2f",
		labels.Time(c.CreatedAt), c.Status, c.Confidence, c.SpamScore)
	if labels.Flagged(c, opts) {
		meta += " (possible spam)"
	}
	pdf.Cell(0, 5, meta)
	pdf.Ln(5)

	pdf.SetFont(fontFamily, "", 10)
	pdf.MultiCell(pageWidth, 5, tr(excerpt(c.Text)), "", "L", false)
	pdf.Ln(3)
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRune {
		return text
	}
	return string(runes[:excerptRune]) + "..."
}
