package mocks

import (
	"context"
	"io"
	"strings"
	"sync"
)

// GoRunner is a fake go toolchain runner. Unset funcs return empty output.
type GoRunner struct {
	OutputFunc func(args []string) ([]byte, error)
	StreamFunc func(args []string, w io.Writer) error

	mu    sync.Mutex
	calls []string
}

func (r *GoRunner) record(args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, strings.Join(args, " "))
}

// Calls returns every invocation as a space-joined argument string.
func (r *GoRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *GoRunner) Output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	r.record(args)
	if r.OutputFunc == nil {
		return nil, nil
	}
	return r.OutputFunc(args)
}

func (r *GoRunner) Stream(ctx context.Context, dir string, w io.Writer, args ...string) error {
	r.record(args)
	if r.StreamFunc == nil {
		return nil
	}
	return r.StreamFunc(args, w)
}
