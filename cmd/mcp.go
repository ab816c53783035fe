package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/modlens/modlens/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing analyze_text, search_policies and get_policy tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "modlens MCP server started on stdio (policies=%d)\n", a.store.Count())

		srv := mcpserver.NewServer(orch, a.store)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
