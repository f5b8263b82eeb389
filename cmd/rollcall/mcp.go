package main

import (
	"github.com/spf13/cobra"

	"github.com/tjfontaine/rollcall-gateway/internal/mcptools"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol server on stdio",
		Long: `Starts an MCP server exposing the resolve_vote and list_votes tools over
standard input/output. Logs go to stderr so they never corrupt JSON-RPC.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			return mcptools.NewServer(gw.Pipeline, version, gw.Logger()).ServeStdio()
		},
	}
}
