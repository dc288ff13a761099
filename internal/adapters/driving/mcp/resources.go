package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for whistle resources.
	uriScheme = "whistle://"
)

// statsOutput is the JSON body of the stats resource.
type statsOutput struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByUrgency     map[string]int `json:"by_urgency"`
	ByStatus      map[string]int `json:"by_status"`
	FlaggedSpam   int            `json:"flagged_spam"`
	AvgConfidence float64        `json:"avg_confidence"`
	PerMonth      float64        `json:"per_month"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if !s.ports.canQuery() {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Aggregate complaint statistics, spam excluded",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "complaints/{complaintId}",
		Name:        "complaint",
		Description: "A single complaint with its status history",
		MIMEType:    "application/json",
	}, s.handleComplaintResource)
}

// handleStatsResource returns aggregate figures over all non-spam complaints.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ctx, err := s.operatorContext(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.ports.Query.Stats(ctx, domain.FilterSpec{})
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	out := statsOutput{
		Total:         stats.Total,
		ByCategory:    map[string]int{},
		ByUrgency:     map[string]int{},
		ByStatus:      map[string]int{},
		FlaggedSpam:   stats.FlaggedSpam,
		AvgConfidence: stats.AvgConfidence,
		PerMonth:      stats.PerMonth,
	}
	for c, n := range stats.ByCategory {
		out.ByCategory[c.String()] = n
	}
	for u, n := range stats.ByUrgency {
		out.ByUrgency[u.String()] = n
	}
	for st, n := range stats.ByStatus {
		out.ByStatus[st.String()] = n
	}

	return jsonResult(req.Params.URI, out)
}

// handleComplaintResource returns one complaint and its history.
func (s *Server) handleComplaintResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractComplaintID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	ctx, err := s.operatorContext(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.ports.Query.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting complaint: %w", err)
	}
	history, err := s.ports.Query.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting history: %w", err)
	}

	return jsonResult(req.Params.URI, struct {
		Complaint ComplaintOutput       `json:"complaint"`
		History   []domain.StatusChange `json:"history"`
	}{toOutput(c), history})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractComplaintID extracts the id from a URI like whistle://complaints/{complaintId}.
func extractComplaintID(uri string) string {
	const prefix = uriScheme + "complaints/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
