// Package tools implements the five MCP tools exposed by kimi-coder-mcp.
// Each tool handler owns one delegated task cycle: snapshot the working
// directory, run Kimi, snapshot again, and report the resulting file
// changes alongside Kimi's textual output.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/kimi"
	"github.com/autumnbrown/kimi-coder-mcp/internal/tracker"
)

// Executor runs one prompt against the Kimi CLI. Satisfied by
// kimi.Runner; narrowed here so tests can substitute a fake.
type Executor interface {
	Execute(ctx context.Context, prompt string) (*kimi.Result, error)
}

// RunnerFactory builds an Executor bound to a working directory. A
// fresh runner per invocation mirrors the fresh tracker per invocation:
// no state crosses delegated tasks.
type RunnerFactory func(workDir string) (Executor, error)

// Deps carries the shared collaborators injected into every tool.
type Deps struct {
	// DefaultWorkDir is used when a request omits working_dir.
	DefaultWorkDir string

	// NewRunner builds the Kimi executor for one invocation.
	NewRunner RunnerFactory

	// Logger receives per-invocation diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// resolveWorkDir picks the working directory for one request and checks
// that it exists. An invalid directory is the caller's error, reported
// as a tool error rather than a degraded payload.
func (d *Deps) resolveWorkDir(requested string) (string, error) {
	dir := requested
	if dir == "" {
		dir = d.DefaultWorkDir
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("working directory %q not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %q is not a directory", dir)
	}
	return dir, nil
}

// taskOutcome is the shared result of one tracked Kimi run.
type taskOutcome struct {
	output   string
	changes  tracker.Changes
	contents map[string]string
	execErr  error
}

// runTracked performs the snapshot / execute / snapshot / diff cycle.
// Execution failures do not abort the cycle: Kimi may have written
// files before failing, and those changes are still reported.
func (d *Deps) runTracked(ctx context.Context, workDir, prompt string) (*taskOutcome, error) {
	runner, err := d.NewRunner(workDir)
	if err != nil {
		return nil, fmt.Errorf("creating kimi runner: %w", err)
	}

	tr := tracker.New(workDir, d.logger())
	tr.TakeInitialSnapshot()

	result, execErr := runner.Execute(ctx, prompt)

	tr.TakeFinalSnapshot()
	changes := tr.DetectChanges()
	contents := tr.ReadFileContents(append(append([]string{}, changes.Created...), changes.Modified...))

	out := &taskOutcome{
		changes:  changes,
		contents: contents,
		execErr:  execErr,
	}
	if result != nil {
		out.output = result.Stdout
	}
	if execErr != nil {
		d.logger().Warn("kimi execution failed", "error", execErr)
	}
	return out, nil
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// jsonResult marshals a payload struct into a text content result.
func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// emptyStrings never returns nil so JSON payloads serialize as [] not null.
func emptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// emptyContents never returns nil so JSON payloads serialize as {} not null.
func emptyContents(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
