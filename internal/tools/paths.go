package tools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePaths rejects any requested path that resolves outside the
// working directory. Guards against traversal in caller-supplied file
// lists; the paths themselves need not exist, but symlinks that do
// exist are followed so a link cannot smuggle a path out of bounds.
func validatePaths(workDir string, paths []string) error {
	base, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}
	for _, p := range paths {
		if p == "" {
			return fmt.Errorf("empty file path")
		}
		full, err := filepath.Abs(filepath.Join(base, filepath.FromSlash(p)))
		if err != nil {
			return fmt.Errorf("resolving path %q: %w", p, err)
		}
		full = resolveExistingPrefix(full)
		rel, err := filepath.Rel(base, full)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("path %q escapes the working directory", p)
		}
	}
	return nil
}

// resolveExistingPrefix resolves symlinks in the deepest existing
// ancestor of path and reattaches the not-yet-created remainder.
func resolveExistingPrefix(path string) string {
	suffix := ""
	for cur := path; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, suffix)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}
