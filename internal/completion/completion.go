// Package completion provides a write-once result handle for a test run.
package completion

import (
	"context"
	"sync/atomic"
)

// Signal is resolved exactly once with the outcome of a run: nil for success,
// or an error describing the failure. It may be awaited any number of times.
type Signal struct {
	resolved atomic.Bool
	done     chan struct{}
	err      error
}

// New creates an unresolved Signal.
func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Resolve records the outcome and releases all waiters.
// Resolving a Signal twice is a programming error and panics.
func (s *Signal) Resolve(err error) {
	if !s.resolved.CompareAndSwap(false, true) {
		panic("completion: signal resolved twice")
	}
	s.err = err
	close(s.done)
}

// Resolved reports whether Resolve has been called.
func (s *Signal) Resolved() bool {
	return s.resolved.Load()
}

// Done is closed once the signal is resolved.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the signal is resolved and returns its outcome.
// If ctx ends first, Wait returns the context's error; the signal itself stays pending.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
