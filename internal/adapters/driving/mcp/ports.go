package mcp

import (
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Intake accepts anonymous submissions.
	Intake driving.IntakeService

	// Query reads complaints. Requires Operator.
	Query driving.QueryService

	// Export renders complaint sets. Requires Operator and Query.
	Export driving.ExportService

	// Operator resumes the stored operator session for review tools.
	Operator driving.OperatorService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Intake == nil {
		return ErrMissingIntakeService
	}
	// Review tools are registered only when their ports are present
	return nil
}

func (p *Ports) canQuery() bool {
	return p.Query != nil && p.Operator != nil
}

func (p *Ports) canExport() bool {
	return p.canQuery() && p.Export != nil
}
