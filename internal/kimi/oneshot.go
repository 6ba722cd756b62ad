package kimi

import "context"

// OneShot runs Kimi in non-interactive print mode: the prompt is passed
// as the final command argument and the process exits when the response
// is complete.
type OneShot struct {
	base
}

// Execute runs `kimi [args...] <prompt>` and captures the response.
// On a non-zero exit the partial Result is returned alongside the
// *ExecError so callers can still surface Kimi's output.
func (o *OneShot) Execute(ctx context.Context, prompt string) (*Result, error) {
	args := append(append([]string{}, o.opts.Args...), prompt)
	return o.run(ctx, args, nil)
}
