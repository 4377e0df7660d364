package executor

import (
	"context"
	"errors"
	"io"
	"time"
)

// MockProcessRunner is a scripted ProcessRunner for tests.
type MockProcessRunner struct {
	// RunFunc, when set, produces the result of every call.
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// Delay simulates a slow process.
	Delay time.Duration

	// ShouldTimeout blocks until the context is done.
	ShouldTimeout bool

	CallCount int
	LastPath  string
	LastArgs  []string
	// LastStdin holds what the last call read from stdin.
	LastStdin []byte
}

// Run executes the mock behaviour.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.CallCount++
	m.LastPath = path
	m.LastArgs = args
	m.LastStdin = nil
	if stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, err
		}
		m.LastStdin = b
	}

	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, nil)
	}
	return []byte("{}"), nil, nil
}

// NewMockProcessRunner answers --plugin-info with info and any other call
// with export.
func NewMockProcessRunner(info, export []byte) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(_ context.Context, _ string, args []string, _ io.Reader) ([]byte, []byte, error) {
			if len(args) == 1 && args[0] == "--plugin-info" {
				return info, nil, nil
			}
			return export, nil, nil
		},
	}
}

// NewTimeoutMockProcessRunner creates a mock that simulates a hung process.
func NewTimeoutMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{ShouldTimeout: true}
}

// NewErrorMockProcessRunner creates a mock whose process always fails.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, []string, io.Reader) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New("exit status 1")
		},
	}
}
