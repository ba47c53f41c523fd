package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/walkstat/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run walkstat as an MCP server over stdio",
		Long: `Start an MCP (Model Context Protocol) server exposing the walk_simulate
and walk_sweep tools. The server communicates over stdin/stdout, so logs go
to stderr.

Example client configuration:
  {
    "mcpServers": {
      "walkstat": {"command": "walkstat", "args": ["mcp-server"]}
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "walkstat",
				Version:  version,
				Settings: rt.cfg,
				Logger:   rt.logger,
				Runs:     rt.runs,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			if err := server.Run(cmd.Context()); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
}
