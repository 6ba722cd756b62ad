package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/autumnbrown/kimi-coder-mcp/internal/prompt"
	"github.com/autumnbrown/kimi-coder-mcp/internal/tracker"
)

// RefactorResult is the JSON payload returned by kimi_refactor.
type RefactorResult struct {
	OriginalContent   string   `json:"original_content"`
	RefactoredContent string   `json:"refactored_content"`
	Explanation       string   `json:"explanation"`
	FilesModified     []string `json:"files_modified"`
	Success           bool     `json:"success"`
	Error             string   `json:"error,omitempty"`
}

// RefactorTool asks Kimi to refactor one file in place and reports the
// before/after contents.
type RefactorTool struct {
	deps *Deps
}

// NewRefactorTool creates the kimi_refactor tool.
func NewRefactorTool(deps *Deps) *RefactorTool {
	return &RefactorTool{deps: deps}
}

// Definition describes the tool to MCP clients.
func (t *RefactorTool) Definition() mcp.Tool {
	return mcp.NewTool("kimi_refactor",
		mcp.WithDescription("Refactor an existing file with Kimi. Returns the original and refactored contents plus Kimi's explanation."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path of the file to refactor, relative to the working directory"),
		),
		mcp.WithString("refactor_instructions",
			mcp.Required(),
			mcp.Description("Instructions for the refactoring"),
		),
		mcp.WithString("working_dir",
			mcp.Description("Directory to operate in; defaults to the configured workspace"),
		),
	)
}

// Handle captures the file before the run, delegates, and reports the
// before/after pair.
func (t *RefactorTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	instructions, err := req.RequireString("refactor_instructions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workDir, err := t.deps.resolveWorkDir(req.GetString("working_dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validatePaths(workDir, []string{filePath}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	before := tracker.New(workDir, t.deps.logger()).ReadFileContents([]string{filePath})
	original, ok := before[filePath]
	if !ok {
		return mcp.NewToolResultError("file not found or unreadable: " + filePath), nil
	}

	outcome, err := t.deps.runTracked(ctx, workDir, prompt.Refactor(filePath, instructions))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	refactored := original
	if after, ok := outcome.contents[filePath]; ok {
		refactored = after
	}

	return jsonResult(RefactorResult{
		OriginalContent:   original,
		RefactoredContent: refactored,
		Explanation:       outcome.output,
		FilesModified:     emptyStrings(outcome.changes.Modified),
		Success:           outcome.execErr == nil,
		Error:             errorMessage(outcome.execErr),
	})
}
