package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autumnbrown/kimi-coder-mcp/internal/config"
	"github.com/autumnbrown/kimi-coder-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Run the MCP server. The protocol occupies stdin and stdout, so all
logging goes to stderr. This command is normally launched by an MCP
client, not by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
		slog.SetDefault(logger)

		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "warning: stdout is a terminal; this command expects to be launched by an MCP client")
		}

		logger.Info("starting kimi-coder MCP server",
			"version", server.Version,
			"mode", cfg.Mode,
			"workspace", cfg.Workspace,
			"timeout_seconds", cfg.Timeout,
		)
		return server.ServeStdio(server.New(cfg, logger))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
