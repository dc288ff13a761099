package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

const instructions = `whistle collects anonymous workplace complaints.

Use submit_complaint to file a complaint on behalf of the user. Pass only the
complaint narrative: never add the user's name, email address or other
identifying details unless they are part of what the user wants reported.

query_complaints, export_complaints and the whistle:// resources are for the
operator who reviews complaints and need an operator session.`

// Server is the MCP server for whistle.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	version string
	tools   []string
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer creates a server over ports. Review tools and resources are
// only registered when the query, export and operator ports are present.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "whistle",
		Version: s.version,
	}, &mcp.ServerOptions{Instructions: instructions})

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Tools lists the registered tool names in registration order.
func (s *Server) Tools() []string {
	return s.tools
}

// operatorContext resumes the stored operator session.
func (s *Server) operatorContext(ctx context.Context) (context.Context, error) {
	if s.ports.Operator == nil {
		return nil, domain.ErrAuthRequired
	}
	return s.ports.Operator.Resume(ctx)
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck // best effort on exit
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
