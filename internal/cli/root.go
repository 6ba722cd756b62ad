// Package cli provides the Cobra commands for kimi-coder-mcp: serve
// (run the stdio MCP server), doctor (environment checks), and version.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kimi-coder-mcp",
	Short: "MCP server exposing the Kimi CLI as coding tools",
	Long: `kimi-coder-mcp wraps the Kimi CLI coding assistant as an MCP server,
letting agents like Claude Code delegate coding subtasks to Kimi and
observe the resulting file changes.`,
	Example: `  # Run the stdio server (normally launched by an MCP client)
  kimi-coder-mcp serve

  # Check that the Kimi CLI and configuration are usable
  kimi-coder-mcp doctor

  # Use a project-local config file
  kimi-coder-mcp serve --config ./kimi-mcp.yaml`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a local config file (JSON or YAML)")
}
