package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/prompt"
	"github.com/autumnbrown/kimi-coder-mcp/internal/tracker"
)

// PromptResult is the JSON payload returned by kimi_prompt.
type PromptResult struct {
	Output        string            `json:"output"`
	FilesCreated  []string          `json:"files_created"`
	FilesModified []string          `json:"files_modified"`
	FileContents  map[string]string `json:"file_contents"`
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
}

// PromptTool sends a free-form prompt to Kimi and tracks any resulting
// file changes.
type PromptTool struct {
	deps *Deps
}

// NewPromptTool creates the kimi_prompt tool.
func NewPromptTool(deps *Deps) *PromptTool {
	return &PromptTool{deps: deps}
}

// Definition describes the tool to MCP clients.
func (t *PromptTool) Definition() mcp.Tool {
	return mcp.NewTool("kimi_prompt",
		mcp.WithDescription("Send a generic prompt to Kimi. File changes made during the run are tracked and returned."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The prompt to send to Kimi"),
		),
		mcp.WithBoolean("include_workspace_context",
			mcp.Description("Prepend an ignore-filtered file listing of the working directory to the prompt"),
		),
		mcp.WithString("working_dir",
			mcp.Description("Directory to operate in; defaults to the configured workspace"),
		),
	)
}

// Handle sends the prompt, optionally enriched with workspace context.
func (t *PromptTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userPrompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workDir, err := t.deps.resolveWorkDir(req.GetString("working_dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tree string
	if req.GetBool("include_workspace_context", false) {
		// The listing comes from a throwaway snapshot so it passes
		// through the same ignore rules as change detection.
		snap := tracker.New(workDir, t.deps.logger()).Snapshot()
		paths := make([]string, 0, len(snap))
		for p := range snap {
			paths = append(paths, p)
		}
		tree = prompt.Tree(paths)
	}

	outcome, err := t.deps.runTracked(ctx, workDir, prompt.Generic(userPrompt, tree))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(PromptResult{
		Output:        outcome.output,
		FilesCreated:  emptyStrings(outcome.changes.Created),
		FilesModified: emptyStrings(outcome.changes.Modified),
		FileContents:  emptyContents(outcome.contents),
		Success:       outcome.execErr == nil,
		Error:         errorMessage(outcome.execErr),
	})
}
