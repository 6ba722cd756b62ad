package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/prompt"
)

// DebugResult is the JSON payload returned by kimi_debug.
type DebugResult struct {
	Diagnosis     string            `json:"diagnosis"`
	Solution      string            `json:"solution"`
	FilesModified []string          `json:"files_modified"`
	FileContents  map[string]string `json:"file_contents"`
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
}

// DebugTool asks Kimi to diagnose an error and apply a fix when the fix
// is contained in the listed files.
type DebugTool struct {
	deps *Deps
}

// NewDebugTool creates the kimi_debug tool.
func NewDebugTool(deps *Deps) *DebugTool {
	return &DebugTool{deps: deps}
}

// Definition describes the tool to MCP clients.
func (t *DebugTool) Definition() mcp.Tool {
	return mcp.NewTool("kimi_debug",
		mcp.WithDescription("Debug an error with Kimi's help. Kimi diagnoses the cause and may fix the listed files; modified files are tracked and returned."),
		mcp.WithString("error_message",
			mcp.Required(),
			mcp.Description("The error description or message"),
		),
		mcp.WithArray("relevant_files",
			mcp.Required(),
			mcp.Description("Files related to the error, relative to the working directory"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("context",
			mcp.Description("Optional additional context"),
		),
		mcp.WithString("working_dir",
			mcp.Description("Directory to operate in; defaults to the configured workspace"),
		),
	)
}

// Handle runs the debugging task.
func (t *DebugTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	errorMessageArg, err := req.RequireString("error_message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	relevantFiles := req.GetStringSlice("relevant_files", nil)
	if len(relevantFiles) == 0 {
		return mcp.NewToolResultError("relevant_files must contain at least one path"), nil
	}

	workDir, err := t.deps.resolveWorkDir(req.GetString("working_dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validatePaths(workDir, relevantFiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := prompt.Debug(errorMessageArg, relevantFiles, req.GetString("context", ""))
	outcome, err := t.deps.runTracked(ctx, workDir, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(DebugResult{
		Diagnosis:     outcome.output,
		Solution:      extractSolution(outcome.output),
		FilesModified: emptyStrings(outcome.changes.Modified),
		FileContents:  emptyContents(outcome.contents),
		Success:       outcome.execErr == nil,
		Error:         errorMessage(outcome.execErr),
	})
}

// extractSolution returns the text following a "Solution"-style heading
// in Kimi's response, or "" when no such section is present. The full
// response is always available in Diagnosis.
func extractSolution(output string) string {
	lower := strings.ToLower(output)
	for _, marker := range []string{"solution:", "fix:", "## solution", "## fix"} {
		if idx := strings.Index(lower, marker); idx != -1 {
			return strings.TrimSpace(output[idx+len(marker):])
		}
	}
	return ""
}
