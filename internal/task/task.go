// Package task is the entry point that wires flags, the lifecycle observer and a test
// framework into a single run with one completion result.
package task

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/completion"
	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/filter"
	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/observer"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// ListHeader is the first line of list output.
const ListHeader = "Test cases:"

// Flags are the per-invocation options of the test task.
type Flags struct {
	List        bool
	Summary     summary.Mode
	FilterTerms []string
}

// Task runs a framework's test cases once.
type Task struct {
	Framework framework.Framework
	Sink      diag.Sink

	// Setup registers test cases with the framework.
	Setup func(ctx context.Context) error

	// LegacySetup registers test cases and receives the observer directly.
	//
	// Deprecated: use Setup. LegacySetup is still honored but logs a warning.
	LegacySetup func(ctx context.Context, o framework.Observer) error

	observer *observer.Observer
}

// Start prepares the framework and either lists cases or starts the run.
//
// In list mode the eligible case descriptions are logged and Start returns a nil
// Signal without running anything. Otherwise the returned Signal resolves when the
// framework reports the run is done.
func (t *Task) Start(ctx context.Context, flags Flags) (*completion.Signal, error) {
	sink := t.Sink
	if sink == nil {
		sink = diag.Discard
	}

	spec := filter.New(flags.FilterTerms)
	signal := completion.New()
	obs := observer.New(sink, flags.Summary, signal)
	t.observer = obs

	t.Framework.SetConfiguration(obs)

	switch {
	case t.Setup != nil:
		if err := t.Setup(ctx); err != nil {
			return nil, fmt.Errorf("register tests: %w", err)
		}
	case t.LegacySetup != nil:
		sink.Warning("test registration that takes the observer is deprecated; register tests without arguments")
		if err := t.LegacySetup(ctx, obs); err != nil {
			return nil, fmt.Errorf("register tests: %w", err)
		}
	}

	if !spec.Empty() {
		sink.Info("filtering tests by %s", spec)
		t.Framework.SetFilter(spec.Predicate())
	}

	if flags.List {
		sink.Info("%s", listing(t.Framework.Cases()))
		return nil, nil
	}

	t.Framework.Start(ctx)
	return signal, nil
}

// Run starts the task and waits for its result. List mode returns nil immediately.
// A failed run returns observer.ErrRunFailed; an expired ctx returns ctx.Err().
func (t *Task) Run(ctx context.Context, flags Flags) error {
	signal, err := t.Start(ctx, flags)
	if err != nil {
		return err
	}
	if signal == nil {
		return nil
	}
	return signal.Wait(ctx)
}

// Tally returns the tally of the last run. It is zero until the run completes.
func (t *Task) Tally() summary.Tally {
	if t.observer == nil {
		return summary.Tally{}
	}
	return t.observer.Tally()
}

// Results returns the cases reported by the last run.
func (t *Task) Results() []framework.Case {
	if t.observer == nil {
		return nil
	}
	return t.observer.Results()
}

func listing(cases []framework.Case) string {
	descriptions := make([]string, 0, len(cases))
	for _, c := range cases {
		descriptions = append(descriptions, c.Description())
	}
	sort.Strings(descriptions)
	return strings.Join(append([]string{ListHeader}, descriptions...), "\n")
}
