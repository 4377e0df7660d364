package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// ProcessRunner runs external plugin processes. Tests substitute a mock.
type ProcessRunner interface {
	// Run executes path with args, feeding stdin when non-nil, and returns
	// everything the process wrote to stdout and stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner implements ProcessRunner with os/exec.
type RealProcessRunner struct {
	// Env is appended to the inherited environment.
	Env []string
}

// Run executes a real external process.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// NewRealProcessRunner creates a new real process runner.
func NewRealProcessRunner(env ...string) *RealProcessRunner {
	return &RealProcessRunner{Env: env}
}
