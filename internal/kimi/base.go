package kimi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// base provides the shared subprocess mechanics for both strategies:
// environment assembly, timeout handling, kill-on-deadline, and exit
// code capture.
type base struct {
	opts Options
}

// Validate checks the CLI binary is reachable in PATH.
func (b *base) Validate() error {
	if _, err := exec.LookPath(b.opts.Command); err != nil {
		return fmt.Errorf("kimi CLI %q not found in PATH (install it or check your PATH)", b.opts.Command)
	}
	return nil
}

// Version executes the CLI with --version and returns the trimmed output.
func (b *base) Version() (string, error) {
	out, err := exec.Command(b.opts.Command, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("getting kimi version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// buildEnv merges the process environment with the API key and any
// user-provided variables. Later entries win, so opts.Env overrides.
func (b *base) buildEnv() []string {
	env := os.Environ()
	if b.opts.APIKey != "" {
		env = append(env, "MOONSHOT_API_KEY="+b.opts.APIKey)
	}
	for k, v := range b.opts.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// waitDelay bounds how long Wait blocks on the stdout/stderr copiers
// after the CLI is killed. Children spawned by the CLI inherit the
// pipes and would otherwise hold Wait open for their full lifetime.
const waitDelay = 5 * time.Second

// run executes the CLI with the given arguments, capturing stdout and
// stderr, bounded by the configured timeout. stdin, when non-nil, is
// streamed to the process and the pipe closed so the child sees EOF.
// On timeout or a non-zero exit the partial Result is returned
// alongside the error so callers can surface whatever Kimi wrote.
func (b *base) run(ctx context.Context, args []string, stdin io.Reader) (*Result, error) {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.opts.Command, args...)
	if b.opts.WorkDir != "" {
		cmd.Dir = b.opts.WorkDir
	}
	cmd.Env = b.buildEnv()
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = stdin

	start := time.Now()
	waitErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: duration,
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.ExitCode = -1
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return result, fmt.Errorf("%w after %s", ErrTimeout, b.opts.Timeout)
			}
			return result, fmt.Errorf("executing %s: %w", b.opts.Command, ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("executing %s: %w", b.opts.Command, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
		return result, &ExecError{ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}
