package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatdocs/internal/adapters/driving/mcp"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
the documentation index.

The server exposes a "retrieve" tool, an "ask" tool when the language model
is configured, the index statistics and the transcript of the session.
By default it communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for desktop assistants)
  chatdocs mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  chatdocs mcp serve --port 8080

Desktop assistant configuration:
  {
    "mcpServers": {
      "chatdocs": {
        "command": "/path/to/chatdocs",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	retriever, err := backend.Retriever(settings)
	if err != nil {
		return err
	}
	index, err := backend.Index(settings)
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Retriever:  retriever,
		Index:      index,
		Transcript: memory.NewTranscriptLog(),
	}
	// Ask connects to the LLM lazily; check it up front so an unreachable
	// model disables the tool instead of failing every call.
	if _, err := backend.Models(settings); err != nil {
		logger.Warn("ask tool disabled: %v", err)
	} else if ask, err := backend.Ask(settings); err != nil {
		logger.Warn("ask tool disabled: %v", err)
	} else {
		ports.Ask = ask
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
