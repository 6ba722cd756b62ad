package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/prompt"
)

// CodeTaskResult is the JSON payload returned by kimi_code_task.
type CodeTaskResult struct {
	Output        string            `json:"output"`
	FilesCreated  []string          `json:"files_created"`
	FilesModified []string          `json:"files_modified"`
	FileContents  map[string]string `json:"file_contents"`
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
}

// CodeTaskTool delegates a coding task to Kimi and reports file changes.
type CodeTaskTool struct {
	deps *Deps
}

// NewCodeTaskTool creates the kimi_code_task tool.
func NewCodeTaskTool(deps *Deps) *CodeTaskTool {
	return &CodeTaskTool{deps: deps}
}

// Definition describes the tool to MCP clients.
func (t *CodeTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("kimi_code_task",
		mcp.WithDescription("Execute a coding task with Kimi. Kimi edits files directly in the working directory; the response lists created and modified files with their contents."),
		mcp.WithString("task_description",
			mcp.Required(),
			mcp.Description("Detailed description of the coding task"),
		),
		mcp.WithArray("context_files",
			mcp.Description("Optional file paths (relative to the working directory) to include as context"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("working_dir",
			mcp.Description("Directory to operate in; defaults to the configured workspace"),
		),
	)
}

// Handle runs the delegated task.
func (t *CodeTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskDescription, err := req.RequireString("task_description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contextFiles := req.GetStringSlice("context_files", nil)

	workDir, err := t.deps.resolveWorkDir(req.GetString("working_dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validatePaths(workDir, contextFiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := t.deps.runTracked(ctx, workDir, prompt.CodeTask(taskDescription, contextFiles))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(CodeTaskResult{
		Output:        outcome.output,
		FilesCreated:  emptyStrings(outcome.changes.Created),
		FilesModified: emptyStrings(outcome.changes.Modified),
		FileContents:  emptyContents(outcome.contents),
		Success:       outcome.execErr == nil,
		Error:         errorMessage(outcome.execErr),
	})
}
