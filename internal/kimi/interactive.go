package kimi

import (
	"context"
	"strings"
)

// Interactive runs Kimi as a session process: the prompt is streamed
// over stdin, the pipe is closed, and stdout is captured until the
// process exits. This suits CLI builds that read tasks from standard
// input rather than accepting a prompt argument.
type Interactive struct {
	base
}

// Execute spawns `kimi [args...]`, writes the prompt followed by a
// newline to stdin, and waits for the session to finish.
func (i *Interactive) Execute(ctx context.Context, prompt string) (*Result, error) {
	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}
	return i.run(ctx, i.opts.Args, strings.NewReader(prompt))
}
