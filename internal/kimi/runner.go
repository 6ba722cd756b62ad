// Package kimi runs the Kimi CLI as a bounded subprocess. It provides a
// single execution capability with two transport strategies: one-shot
// (prompt passed as a command argument) and interactive (prompt streamed
// over stdin). The strategy is chosen at construction, never by
// branching inside a runner.
package kimi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout is returned when the Kimi process exceeds its deadline.
var ErrTimeout = errors.New("kimi execution timed out")

// ExecError reports a Kimi process that exited non-zero.
type ExecError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	tail := e.Stderr
	if len(tail) > 500 {
		tail = "..." + tail[len(tail)-500:]
	}
	if tail == "" {
		return fmt.Sprintf("kimi exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("kimi exited with code %d: %s", e.ExitCode, strings.TrimSpace(tail))
}

// Result contains the outcome of one Kimi execution.
type Result struct {
	// ExitCode is the process exit status (0 indicates success).
	ExitCode int

	// Stdout is the captured textual response.
	Stdout string

	// Stderr is captured diagnostic output.
	Stderr string

	// Duration is the execution time from start to completion.
	Duration time.Duration
}

// Runner executes a single prompt against the Kimi CLI.
type Runner interface {
	// Execute runs the prompt and captures output. Respects context
	// cancellation; the configured timeout is applied on top of ctx.
	Execute(ctx context.Context, prompt string) (*Result, error)

	// Validate checks the CLI is installed in PATH.
	Validate() error

	// Version returns the installed CLI version, or an error if the
	// binary cannot report one.
	Version() (string, error)
}

// Execution modes accepted by Options.Mode.
const (
	ModeOneShot     = "oneshot"
	ModeInteractive = "interactive"
)

// Options configures a runner.
type Options struct {
	// Command is the CLI binary name or path (e.g. "kimi").
	Command string

	// Args are arguments placed before the prompt.
	Args []string

	// WorkDir is the directory Kimi operates in.
	WorkDir string

	// Timeout bounds one execution. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration

	// APIKey, when non-empty, is exported as MOONSHOT_API_KEY for the
	// child process.
	APIKey string

	// Env contains additional environment variables merged over the
	// process environment.
	Env map[string]string
}

// NewRunner selects the execution strategy for mode. Unknown modes are
// rejected so a config typo fails at startup, not mid-task.
func NewRunner(mode string, opts Options) (Runner, error) {
	switch mode {
	case ModeOneShot, "":
		return &OneShot{base: base{opts: opts}}, nil
	case ModeInteractive:
		return &Interactive{base: base{opts: opts}}, nil
	default:
		return nil, fmt.Errorf("unknown execution mode %q (want %q or %q)", mode, ModeOneShot, ModeInteractive)
	}
}
