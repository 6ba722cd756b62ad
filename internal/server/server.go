// Package server wires the MCP server: it resolves configuration,
// builds the Kimi runner factory, and registers the five tools. No
// business logic lives here, only composition.
package server

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/autumnbrown/kimi-coder-mcp/internal/config"
	"github.com/autumnbrown/kimi-coder-mcp/internal/kimi"
	"github.com/autumnbrown/kimi-coder-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all Kimi tools registered.
func New(cfg *config.Configuration, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"kimi-coder",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	deps := &tools.Deps{
		DefaultWorkDir: cfg.Workspace,
		NewRunner:      runnerFactory(cfg),
		Logger:         logger,
	}

	codeTask := tools.NewCodeTaskTool(deps)
	s.AddTool(codeTask.Definition(), codeTask.Handle)

	analyze := tools.NewAnalyzeTool(deps)
	s.AddTool(analyze.Definition(), analyze.Handle)

	promptTool := tools.NewPromptTool(deps)
	s.AddTool(promptTool.Definition(), promptTool.Handle)

	refactor := tools.NewRefactorTool(deps)
	s.AddTool(refactor.Definition(), refactor.Handle)

	debug := tools.NewDebugTool(deps)
	s.AddTool(debug.Definition(), debug.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client closes
// the stream.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// runnerFactory builds a per-invocation Kimi runner bound to the
// requested working directory.
func runnerFactory(cfg *config.Configuration) tools.RunnerFactory {
	return func(workDir string) (tools.Executor, error) {
		return kimi.NewRunner(cfg.Mode, kimi.Options{
			Command: cfg.KimiCmd,
			Args:    cfg.KimiArgs,
			WorkDir: workDir,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
			APIKey:  cfg.APIKey,
		})
	}
}

const instructions = `kimi-coder delegates coding subtasks to the Kimi CLI.

Use kimi_code_task for self-contained implementation work, kimi_refactor
for single-file rewrites, kimi_debug when you have a concrete error
message, kimi_analyze_code for read-only review, and kimi_prompt for
anything else. Every mutating tool reports the files Kimi created or
modified together with their contents; binary files are replaced by a
placeholder string.`
