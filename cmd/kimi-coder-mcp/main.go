// kimi-coder-mcp - MCP server wrapping the Kimi CLI coding assistant

package main

import (
	"os"

	"github.com/autumnbrown/kimi-coder-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
