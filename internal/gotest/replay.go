package gotest

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/testparser"
)

// Replay is a Framework backed by a recorded go test -json stream.
// Discover registers every top-level test seen in the recording; Start replays it.
type Replay struct {
	registry
	data []byte
}

var _ framework.Framework = (*Replay)(nil)

// NewReplay reads the whole recording from r.
func NewReplay(r io.Reader) (*Replay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read recorded test output: %w", err)
	}
	return &Replay{data: data}, nil
}

// Discover registers the recording's top-level tests in first-seen order.
func (r *Replay) Discover(ctx context.Context) error {
	scanner := testparser.NewScanner(bytes.NewReader(r.data))
	for scanner.Scan() {
		event, ok := testparser.DecodeEvent(scanner.Bytes())
		if !ok || event.Test == "" || event.IsSubtest() {
			continue
		}
		if event.Action == testparser.ActionRun || event.IsTerminal() {
			r.add(event.Package, event.Test)
		}
	}
	return scanner.Err()
}

// Start replays the recording on a new goroutine.
func (r *Replay) Start(ctx context.Context) {
	go func() {
		r.observer.OnStart()
		stream := NewStream(r.observer, r.lookup)
		stream.Consume(bytes.NewReader(r.data))
		stream.Finish()
	}()
}
