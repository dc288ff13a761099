// Package mcp provides an MCP (Model Context Protocol) server adapter for whistle.
// It lets AI assistants file complaints and, with an operator session, review them.
package mcp

import "errors"

// ErrMissingIntakeService is returned when the intake service is not provided.
var ErrMissingIntakeService = errors.New("mcp: intake service is required")
