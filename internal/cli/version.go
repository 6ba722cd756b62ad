package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/autumnbrown/kimi-coder-mcp/internal/server"
)

var (
	// Version information - set via ldflags during build
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kimi-coder-mcp version %s\n", server.Version)
		fmt.Printf("Built from commit: %s\n", Commit)
		fmt.Printf("Build date: %s\n", BuildDate)
		fmt.Printf("Go version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
