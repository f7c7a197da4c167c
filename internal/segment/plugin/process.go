package plugin

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// ProcessRunner defines an interface for running external processes.
type ProcessRunner interface {
	// Run executes a command with the given context, arguments, stdin, and returns stdout/stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner implements ProcessRunner using actual os/exec commands.
type RealProcessRunner struct{}

// NewRealProcessRunner creates a new real process runner.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes a real external process.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- plugin path is user configured
	cmd.Stdin = stdin

	stdout, err := cmd.Output()
	if err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			return stdout, exitErr.Stderr, err
		}
		return stdout, nil, err
	}

	return stdout, nil, nil
}
