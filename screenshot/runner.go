package screenshot

import (
	"context"
	"errors"
	"os/exec"
)

// Runner executes external commands and returns their standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Commands run to completion; only
// ctx cancellation stops them.
type ExecRunner struct{}

// Run implements Runner. Failures are returned as *ToolError.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		te := &ToolError{Tool: name, Args: args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.Output = string(exitErr.Stderr)
		}
		return out, te
	}
	return out, nil
}
