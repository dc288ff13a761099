package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// errSubmitFailed is the only detail a submitter gets for internal failures.
var errSubmitFailed = errors.New("the complaint could not be submitted, please try again later")

// SubmitInput is the input schema for the submit_complaint tool.
type SubmitInput struct {
	Text string `json:"text" jsonschema:"the complaint text, submitted anonymously"`
}

// SubmitOutput is the output schema for the submit_complaint tool.
type SubmitOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// FilterInput selects complaints. Empty fields do not constrain the result.
type FilterInput struct {
	Category      string   `json:"category,omitempty" jsonschema:"category name or slug, e.g. fraud or harassment"`
	Status        string   `json:"status,omitempty" jsonschema:"pending, in-review or resolved"`
	Urgency       string   `json:"urgency,omitempty" jsonschema:"exact urgency: low, medium, high or critical"`
	MinUrgency    string   `json:"min_urgency,omitempty" jsonschema:"keep complaints at or above this urgency"`
	From          string   `json:"from,omitempty" jsonschema:"earliest submission date, YYYY-MM-DD"`
	To            string   `json:"to,omitempty" jsonschema:"latest submission date inclusive, YYYY-MM-DD"`
	MinConfidence *float64 `json:"min_confidence,omitempty" jsonschema:"minimum classification confidence between 0 and 1"`
	IncludeSpam   bool     `json:"include_spam,omitempty" jsonschema:"include complaints flagged as spam"`
	Text          string   `json:"text,omitempty" jsonschema:"case-insensitive text search"`
	Sort          string   `json:"sort,omitempty" jsonschema:"created_at, urgency, spam_score, confidence or category"`
	Desc          bool     `json:"desc,omitempty" jsonschema:"sort descending"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum number of complaints (default 50)"`
}

// QueryOutput is the output schema for the query_complaints tool.
type QueryOutput struct {
	Complaints []ComplaintOutput `json:"complaints"`
	Count      int               `json:"count"`
}

// ComplaintOutput is one complaint as returned to the assistant.
type ComplaintOutput struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Category   string  `json:"category"`
	Urgency    string  `json:"urgency"`
	Sentiment  string  `json:"sentiment"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	Confidence float64 `json:"confidence"`
	SpamScore  float64 `json:"spam_score"`
}

func toOutput(c *domain.Complaint) ComplaintOutput {
	return ComplaintOutput{
		ID:         c.ID,
		Text:       c.Text,
		Category:   c.Category.String(),
		Urgency:    c.Urgency.String(),
		Sentiment:  string(c.Sentiment.Label),
		Status:     c.Status.String(),
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
		Confidence: c.Confidence,
		SpamScore:  c.SpamScore,
	}
}

// ExportInput is the input schema for the export_complaints tool.
type ExportInput struct {
	Format string      `json:"format" jsonschema:"text, csv, json, html, summary, stats or pdf"`
	Filter FilterInput `json:"filter,omitempty" jsonschema:"which complaints to export"`
}

// ExportOutput is the output schema for the export_complaints tool.
type ExportOutput struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	RecordCount int    `json:"record_count"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
}

const defaultQueryLimit = 50

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "submit_complaint",
		Description: "Submit an anonymous complaint for classification and review",
	}, s.handleSubmit)

	if s.ports.canQuery() {
		addTool(s, &mcp.Tool{
			Name:        "query_complaints",
			Description: "List complaints matching filters. Requires an operator session",
		}, s.handleQuery)
	}
	if s.ports.canExport() {
		addTool(s, &mcp.Tool{
			Name:        "export_complaints",
			Description: "Render matching complaints as a report or backup. Requires an operator session",
		}, s.handleExport)
	}
}

func addTool[In, Out any](s *Server, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.server, t, h)
	s.tools = append(s.tools, t.Name)
}

// handleSubmit handles the submit_complaint tool invocation.
func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	c, err := s.ports.Intake.Submit(ctx, input.Text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, SubmitOutput{}, err
		}
		return nil, SubmitOutput{}, errSubmitFailed
	}
	return nil, SubmitOutput{ID: c.ID, Status: c.Status.String()}, nil
}

// handleQuery handles the query_complaints tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilterInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	spec, err := input.spec()
	if err != nil {
		return nil, QueryOutput{}, err
	}
	if spec.Limit == 0 {
		spec.Limit = defaultQueryLimit
	}
	ctx, err = s.operatorContext(ctx)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	seq, err := s.ports.Query.Query(ctx, spec)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	out := QueryOutput{Complaints: []ComplaintOutput{}}
	for c := range seq {
		out.Complaints = append(out.Complaints, toOutput(&c))
	}
	out.Count = len(out.Complaints)
	return nil, out, nil
}

// handleExport handles the export_complaints tool invocation.
func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	format, err := domain.ParseExportFormat(input.Format)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	spec, err := input.Filter.spec()
	if err != nil {
		return nil, ExportOutput{}, err
	}
	ctx, err = s.operatorContext(ctx)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	records, err := s.ports.Query.Query(ctx, format.Scope(spec))
	if err != nil {
		return nil, ExportOutput{}, err
	}
	artifact, err := s.ports.Export.Export(ctx, records, format)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	out := ExportOutput{
		Format:      artifact.Format.String(),
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		RecordCount: artifact.RecordCount,
		Encoding:    "utf-8",
		Content:     string(artifact.Data),
	}
	if !utf8.Valid(artifact.Data) {
		out.Encoding = "base64"
		out.Content = base64.StdEncoding.EncodeToString(artifact.Data)
	}
	return nil, out, nil
}

// spec converts the input into a validated filter.
func (in FilterInput) spec() (domain.FilterSpec, error) {
	spec := domain.FilterSpec{
		MinConfidence:      in.MinConfidence,
		IncludeFlaggedSpam: in.IncludeSpam,
		Text:               in.Text,
		Sort:               domain.SortKey(in.Sort),
		Desc:               in.Desc,
		Limit:              in.Limit,
	}

	var err error
	parse := func(raw string, fn func(string) error) {
		if err == nil && raw != "" {
			err = fn(raw)
		}
	}
	parse(in.Category, func(v string) error {
		c, err := domain.ParseCategory(v)
		spec.Category = &c
		return err
	})
	parse(in.Status, func(v string) error {
		st, err := domain.ParseStatus(v)
		spec.Status = &st
		return err
	})
	parse(in.Urgency, func(v string) error {
		u, err := domain.ParseUrgency(v)
		spec.Urgency = &u
		return err
	})
	parse(in.MinUrgency, func(v string) error {
		u, err := domain.ParseUrgency(v)
		spec.MinUrgency = &u
		return err
	})
	parse(in.From, func(v string) error {
		t, err := parseDate(v)
		spec.From = &t
		return err
	})
	parse(in.To, func(v string) error {
		t, err := parseDate(v)
		end := t.Add(24*time.Hour - time.Nanosecond)
		spec.To = &end
		return err
	})
	if err != nil {
		return spec, err
	}
	return spec, spec.Validate()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.Join(domain.ErrInvalidInput, err)
	}
	return t, nil
}
