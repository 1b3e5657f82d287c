package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	tutormcp "github.com/einfachManu/marine-snow-tutor/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  ask          — ask the tutor a question, with optional session for follow-ups
  list_topics  — list the covered topic areas

If the document index is unavailable at startup the server still starts;
detail questions then resolve to the refusal response.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			eng, cleanup, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			defer cleanup()

			srv := tutormcp.NewServer(eng, knowledge.Default(), defaultLevel(), logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: snowtutor MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
