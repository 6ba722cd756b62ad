// Package tools tests the MCP tool handlers end to end against a fake
// Kimi executor that mutates the working directory.
// Related: internal/tools/tools.go
// Tags: tools, mcp, handlers, change-tracking
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autumnbrown/kimi-coder-mcp/internal/kimi"
)

// fakeExecutor stands in for the Kimi CLI. Its mutate hook runs at
// "execution" time so handlers observe real before/after file changes.
type fakeExecutor struct {
	output  string
	err     error
	mutate  func() error
	prompts []string
}

func (f *fakeExecutor) Execute(_ context.Context, prompt string) (*kimi.Result, error) {
	f.prompts = append(f.prompts, prompt)
	if f.mutate != nil {
		if err := f.mutate(); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return &kimi.Result{ExitCode: 1, Stdout: f.output}, f.err
	}
	return &kimi.Result{Stdout: f.output}, nil
}

func newDeps(t *testing.T, exec *fakeExecutor) (*Deps, string) {
	t.Helper()
	dir := t.TempDir()
	deps := &Deps{
		DefaultWorkDir: dir,
		NewRunner: func(workDir string) (Executor, error) {
			assert.Equal(t, dir, workDir)
			return exec, nil
		},
	}
	return deps, dir
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodePayload unmarshals the JSON text content of a tool result.
func decodePayload(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, res.IsError, "expected a payload result, got tool error")
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result content must be text")
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func TestCodeTask_ReportsCreatedAndModifiedFiles(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "done, added the endpoint"}
	deps, dir := newDeps(t, exec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	exec.mutate = func() error {
		if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc handler() {}\n"), 0644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "handler_test.go"), []byte("package main\n"), 0644)
	}

	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "Add a handler",
		"context_files":    []any{"main.go"},
	}))
	require.NoError(t, err)

	var payload CodeTaskResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
	assert.Empty(t, payload.Error)
	assert.Equal(t, "done, added the endpoint", payload.Output)
	assert.Equal(t, []string{"handler_test.go"}, payload.FilesCreated)
	assert.Equal(t, []string{"main.go"}, payload.FilesModified)
	assert.Contains(t, payload.FileContents["main.go"], "func handler()")
	assert.Contains(t, payload.FileContents["handler_test.go"], "package main")

	require.Len(t, exec.prompts, 1)
	assert.Contains(t, exec.prompts[0], "Add a handler")
	assert.Contains(t, exec.prompts[0], "- main.go")
}

func TestCodeTask_MissingTaskDescription(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCodeTask_ExecutionFailureStillReportsChanges(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "partial work", err: &kimi.ExecError{ExitCode: 1, Stderr: "rate limited"}}
	deps, dir := newDeps(t, exec)
	exec.mutate = func() error {
		return os.WriteFile(filepath.Join(dir, "partial.go"), []byte("package partial\n"), 0644)
	}

	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "Doomed task",
	}))
	require.NoError(t, err)

	var payload CodeTaskResult
	decodePayload(t, res, &payload)
	assert.False(t, payload.Success)
	assert.Contains(t, payload.Error, "rate limited")
	assert.Equal(t, []string{"partial.go"}, payload.FilesCreated)
}

func TestCodeTask_RejectsEscapingContextFile(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "task",
		"context_files":    []any{"../outside.txt"},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCodeTask_RejectsSymlinkedContextFile(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "ok"}
	deps, dir := newDeps(t, exec)

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0644))
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "leak.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	// A link whose target leaves the working directory is rejected even
	// though the link itself lives inside it.
	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "task",
		"context_files":    []any{"leak.txt"},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	// A link resolving within the working directory still passes.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("fine"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "alias.txt")))

	res, err = NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "task",
		"context_files":    []any{"alias.txt"},
	}))
	require.NoError(t, err)

	var payload CodeTaskResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
}

func TestCodeTask_BadWorkingDir(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewCodeTaskTool(deps).Handle(context.Background(), callRequest("kimi_code_task", map[string]any{
		"task_description": "task",
		"working_dir":      filepath.Join(t.TempDir(), "missing"),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyze_ExtractsSuggestions(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "The code is mostly fine.\n- use context on blocking calls\n* close the file handle\nNot a bullet."}
	deps, dir := newDeps(t, exec)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))

	res, err := NewAnalyzeTool(deps).Handle(context.Background(), callRequest("kimi_analyze_code", map[string]any{
		"file_paths":     []any{"a.go"},
		"analysis_focus": "resource handling",
	}))
	require.NoError(t, err)

	var payload AnalyzeResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
	assert.Contains(t, payload.Analysis, "mostly fine")
	assert.Equal(t, []string{"use context on blocking calls", "close the file handle"}, payload.Suggestions)

	require.Len(t, exec.prompts, 1)
	assert.Contains(t, exec.prompts[0], "resource handling")
}

func TestAnalyze_RequiresFilePaths(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewAnalyzeTool(deps).Handle(context.Background(), callRequest("kimi_analyze_code", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPrompt_TracksChanges(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "created the notes file"}
	deps, dir := newDeps(t, exec)
	exec.mutate = func() error {
		return os.WriteFile(filepath.Join(dir, "NOTES.md"), []byte("# Notes\n"), 0644)
	}

	res, err := NewPromptTool(deps).Handle(context.Background(), callRequest("kimi_prompt", map[string]any{
		"prompt": "write a notes file",
	}))
	require.NoError(t, err)

	var payload PromptResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
	assert.Equal(t, []string{"NOTES.md"}, payload.FilesCreated)
	assert.Equal(t, "# Notes\n", payload.FileContents["NOTES.md"])
}

func TestPrompt_WorkspaceContextListsFiles(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "ok"}
	deps, dir := newDeps(t, exec)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "config"), []byte("x"), 0644))

	_, err := NewPromptTool(deps).Handle(context.Background(), callRequest("kimi_prompt", map[string]any{
		"prompt":                    "look around",
		"include_workspace_context": true,
	}))
	require.NoError(t, err)

	require.Len(t, exec.prompts, 1)
	assert.Contains(t, exec.prompts[0], "visible.txt")
	assert.NotContains(t, exec.prompts[0], ".git/config")
}

func TestRefactor_ReportsBeforeAndAfter(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "Renamed the receiver for clarity."}
	deps, dir := newDeps(t, exec)
	original := "package x\n\nfunc (a *App) Run() {}\n"
	refactored := "package x\n\nfunc (app *App) Run() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.go"), []byte(original), 0644))
	exec.mutate = func() error {
		return os.WriteFile(filepath.Join(dir, "app.go"), []byte(refactored), 0644)
	}

	res, err := NewRefactorTool(deps).Handle(context.Background(), callRequest("kimi_refactor", map[string]any{
		"file_path":             "app.go",
		"refactor_instructions": "rename receiver",
	}))
	require.NoError(t, err)

	var payload RefactorResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
	assert.Equal(t, original, payload.OriginalContent)
	assert.Equal(t, refactored, payload.RefactoredContent)
	assert.Equal(t, "Renamed the receiver for clarity.", payload.Explanation)
	assert.Equal(t, []string{"app.go"}, payload.FilesModified)
}

func TestRefactor_MissingFile(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewRefactorTool(deps).Handle(context.Background(), callRequest("kimi_refactor", map[string]any{
		"file_path":             "nope.go",
		"refactor_instructions": "anything",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDebug_ExtractsSolutionSection(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: "The map is written without a lock.\n\nSolution: guard writes with the mutex."}
	deps, dir := newDeps(t, exec)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.go"), []byte("package store\n"), 0644))
	exec.mutate = func() error {
		return os.WriteFile(filepath.Join(dir, "store.go"), []byte("package store\n// fixed\n"), 0644)
	}

	res, err := NewDebugTool(deps).Handle(context.Background(), callRequest("kimi_debug", map[string]any{
		"error_message":  "fatal error: concurrent map writes",
		"relevant_files": []any{"store.go"},
		"context":        "happens under load",
	}))
	require.NoError(t, err)

	var payload DebugResult
	decodePayload(t, res, &payload)
	assert.True(t, payload.Success)
	assert.Contains(t, payload.Diagnosis, "without a lock")
	assert.Equal(t, "guard writes with the mutex.", payload.Solution)
	assert.Equal(t, []string{"store.go"}, payload.FilesModified)

	require.Len(t, exec.prompts, 1)
	assert.Contains(t, exec.prompts[0], "concurrent map writes")
	assert.Contains(t, exec.prompts[0], "happens under load")
}

func TestDebug_RequiresRelevantFiles(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeExecutor{})
	res, err := NewDebugTool(deps).Handle(context.Background(), callRequest("kimi_debug", map[string]any{
		"error_message": "boom",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRunnerFactoryFailureIsToolError(t *testing.T) {
	t.Parallel()

	deps := &Deps{
		DefaultWorkDir: t.TempDir(),
		NewRunner: func(string) (Executor, error) {
			return nil, errors.New("kimi CLI not found")
		},
	}
	res, err := NewPromptTool(deps).Handle(context.Background(), callRequest("kimi_prompt", map[string]any{
		"prompt": "hi",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestExtractSolution_NoMarker(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", extractSolution("no structured sections here"))
}
