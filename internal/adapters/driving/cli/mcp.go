package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/mcp"
)

var (
	mcpPort        int
	mcpHost        string
	mcpAllowReview bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
	Long:  `Expose whistle to AI assistants over the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server so an assistant can file complaints for its user.

Tools:
  submit_complaint   always available, no session needed
  query_complaints   operator only
  export_complaints  operator only

The operator tools and the whistle://stats and whistle://complaints/{id}
resources act with the stored operator session; run 'whistle operator login'
first.

Over stdio (the default) all tools are offered. With --port the server
listens on HTTP at 127.0.0.1 and offers only submit_complaint, so the
stored operator session is not reachable over the network. Pass
--allow-review to offer the operator tools over HTTP as well.

Examples:
  whistle mcp serve
  whistle mcp serve --port 8080
  whistle mcp serve --port 8080 --host 0.0.0.0

Assistant configuration (stdio):
  {
    "mcpServers": {
      "whistle": {
        "command": "/path/to/whistle",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "HTTP listen address")
	mcpServeCmd.Flags().BoolVar(&mcpAllowReview, "allow-review", false, "Offer operator tools over HTTP")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpPorts returns the ports exposed by the server. Over HTTP the review
// ports are withheld unless explicitly allowed.
func mcpPorts(overHTTP, allowReview bool) *mcp.Ports {
	ports := &mcp.Ports{Intake: intakeService}
	if overHTTP && !allowReview {
		return ports
	}
	ports.Query = queryService
	ports.Export = exportService
	ports.Operator = operatorService
	return ports
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	overHTTP := mcpPort > 0
	server, err := mcp.NewServer(mcpPorts(overHTTP, mcpAllowReview), mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if !overHTTP {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s (tools: %v)\n", addr, server.Tools())
	return server.RunHTTP(cmd.Context(), addr)
}
