// Package tui provides the interactive review console for whistle.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Query lists, reads and updates complaints. Required.
	Query driving.QueryService

	// Settings supplies the analyzer thresholds used for markers. Optional;
	// defaults apply when nil.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService, settings driving.SettingsService) *Ports {
	return &Ports{Query: query, Settings: settings}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
