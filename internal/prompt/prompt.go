// Package prompt assembles the delegated prompts sent to the Kimi CLI
// for each MCP tool. Builders are pure string assembly; workspace
// context rendering reuses the tracker's ignore filter so the listing
// matches what change detection will see.
package prompt

import (
	"fmt"
	"strings"
)

// CodeTask builds the prompt for kimi_code_task. Context file paths are
// referenced by name; Kimi reads them itself from the working directory.
func CodeTask(taskDescription string, contextFiles []string) string {
	var b strings.Builder
	b.WriteString("Complete the following coding task:\n\n")
	b.WriteString(taskDescription)
	if len(contextFiles) > 0 {
		b.WriteString("\n\nRelevant files to consider:\n")
		writeFileList(&b, contextFiles)
	}
	b.WriteString("\n\nMake the necessary file changes directly in the working directory.")
	return b.String()
}

// Analyze builds the prompt for kimi_analyze_code.
func Analyze(filePaths []string, analysisFocus string) string {
	var b strings.Builder
	b.WriteString("Analyze the following code files:\n")
	writeFileList(&b, filePaths)
	if analysisFocus != "" {
		fmt.Fprintf(&b, "\nFocus the analysis on: %s\n", analysisFocus)
	}
	b.WriteString("\nProvide a detailed analysis and concrete improvement suggestions. Do not modify any files.")
	return b.String()
}

// Generic builds the prompt for kimi_prompt. workspaceTree, when
// non-empty, is a pre-rendered file listing of the working directory.
func Generic(userPrompt, workspaceTree string) string {
	if workspaceTree == "" {
		return userPrompt
	}
	var b strings.Builder
	b.WriteString(userPrompt)
	b.WriteString("\n\nCurrent workspace structure:\n")
	b.WriteString(workspaceTree)
	return b.String()
}

// Refactor builds the prompt for kimi_refactor.
func Refactor(filePath, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Refactor the file %s according to these instructions:\n\n", filePath)
	b.WriteString(instructions)
	b.WriteString("\n\nApply the refactoring directly to the file and explain what changed and why.")
	return b.String()
}

// Debug builds the prompt for kimi_debug.
func Debug(errorMessage string, relevantFiles []string, extraContext string) string {
	var b strings.Builder
	b.WriteString("Debug the following error:\n\n")
	b.WriteString(errorMessage)
	if len(relevantFiles) > 0 {
		b.WriteString("\n\nFiles related to the error:\n")
		writeFileList(&b, relevantFiles)
	}
	if extraContext != "" {
		b.WriteString("\nAdditional context:\n")
		b.WriteString(extraContext)
	}
	b.WriteString("\nDiagnose the cause, propose a fix, and apply it if the fix is contained in the listed files.")
	return b.String()
}

func writeFileList(b *strings.Builder, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(b, "- %s\n", p)
	}
}
