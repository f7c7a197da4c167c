package plugin

import (
	"context"
	"io"
	"sync"
)

// mockProcessRunner is a ProcessRunner for tests.
type mockProcessRunner struct {
	mu sync.Mutex

	// runFunc provides custom behaviour per call.
	runFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// block waits for the context to end.
	block bool

	calls    int
	lastArgs []string
}

func (m *mockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.mu.Lock()
	m.calls++
	m.lastArgs = args
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if m.runFunc != nil {
		return m.runFunc(ctx, path, args, stdin)
	}
	return []byte("{}"), nil, nil
}
