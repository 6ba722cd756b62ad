package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/prompt"
)

// AnalyzeResult is the JSON payload returned by kimi_analyze_code.
type AnalyzeResult struct {
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
}

// AnalyzeTool asks Kimi to analyze existing code without modifying it.
type AnalyzeTool struct {
	deps *Deps
}

// NewAnalyzeTool creates the kimi_analyze_code tool.
func NewAnalyzeTool(deps *Deps) *AnalyzeTool {
	return &AnalyzeTool{deps: deps}
}

// Definition describes the tool to MCP clients.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("kimi_analyze_code",
		mcp.WithDescription("Analyze existing code files with Kimi. Read-only: no files are modified."),
		mcp.WithArray("file_paths",
			mcp.Required(),
			mcp.Description("File paths (relative to the working directory) to analyze"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("analysis_focus",
			mcp.Description("Optional specific aspect to focus on (e.g. performance, error handling)"),
		),
		mcp.WithString("working_dir",
			mcp.Description("Directory to operate in; defaults to the configured workspace"),
		),
	)
}

// Handle runs the analysis. Analysis is advisory, so no change tracking
// is performed; the prompt forbids edits.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePaths := req.GetStringSlice("file_paths", nil)
	if len(filePaths) == 0 {
		return mcp.NewToolResultError("file_paths must contain at least one path"), nil
	}

	workDir, err := t.deps.resolveWorkDir(req.GetString("working_dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validatePaths(workDir, filePaths); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runner, err := t.deps.NewRunner(workDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, execErr := runner.Execute(ctx, prompt.Analyze(filePaths, req.GetString("analysis_focus", "")))

	var output string
	if result != nil {
		output = result.Stdout
	}
	if execErr != nil {
		t.deps.logger().Warn("kimi analysis failed", "error", execErr)
	}

	return jsonResult(AnalyzeResult{
		Analysis:    output,
		Suggestions: extractSuggestions(output),
		Success:     execErr == nil,
		Error:       errorMessage(execErr),
	})
}

// extractSuggestions collects bullet lines from the analysis text so
// callers get a machine-readable list alongside the prose.
func extractSuggestions(output string) []string {
	suggestions := []string{}
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			suggestions = append(suggestions, strings.TrimSpace(rest))
		} else if rest, ok := strings.CutPrefix(trimmed, "* "); ok {
			suggestions = append(suggestions, strings.TrimSpace(rest))
		}
	}
	return suggestions
}
