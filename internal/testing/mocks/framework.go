package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/framework"
)

// Case implements framework.Case for testing.
// The planned outcome is applied when the scripted Framework reports the result.
type Case struct {
	desc    string
	planned framework.Outcome
	changed framework.Outcome
	logs    []string

	mu      sync.Mutex
	outcome framework.Outcome
	message string
	stack   string
	elapsed time.Duration
}

// NewCase creates a case that will pass when run.
func NewCase(desc string) *Case {
	return &Case{desc: desc, planned: framework.OutcomePass}
}

// Passing is shorthand for NewCase.
func Passing(desc string) *Case {
	return NewCase(desc)
}

// Failing creates a case that will fail with message.
func Failing(desc, message string) *Case {
	return NewCase(desc).WillEnd(framework.OutcomeFail, message, "")
}

// Erroring creates a case that will end in error with message and stack.
func Erroring(desc, message, stack string) *Case {
	return NewCase(desc).WillEnd(framework.OutcomeError, message, stack)
}

// WillEnd sets the planned outcome, message and stack trace.
func (c *Case) WillEnd(o framework.Outcome, message, stack string) *Case {
	c.planned = o
	c.message = message
	c.stack = stack
	return c
}

// WillChangeTo makes the framework report a second result with outcome o.
func (c *Case) WillChangeTo(o framework.Outcome) *Case {
	c.changed = o
	return c
}

// WithLog adds a message the framework reports while the case runs.
func (c *Case) WithLog(msg string) *Case {
	c.logs = append(c.logs, msg)
	return c
}

// WithRunningTime sets the reported running time.
func (c *Case) WithRunningTime(d time.Duration) *Case {
	c.elapsed = d
	return c
}

// Resolve sets the outcome immediately, bypassing the scripted run.
func (c *Case) Resolve(o framework.Outcome) *Case {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcome = o
	return c
}

func (c *Case) Description() string { return c.desc }

func (c *Case) Outcome() framework.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

func (c *Case) Message() string { return c.message }
func (c *Case) StackTrace() string { return c.stack }
func (c *Case) RunningTime() time.Duration { return c.elapsed }

// Framework implements framework.Framework by replaying scripted cases.
type Framework struct {
	cases    []*Case
	observer framework.Observer
	keep     func(framework.Case) bool

	// Uncaught, when set, is reported as a top-level error in the summary.
	Uncaught string

	starts atomic.Int32
	done   chan struct{}
}

// NewFramework creates a scripted framework with the given cases registered.
func NewFramework(cases ...*Case) *Framework {
	return &Framework{cases: cases, done: make(chan struct{})}
}

// Register adds cases to the registry.
func (f *Framework) Register(cases ...*Case) {
	f.cases = append(f.cases, cases...)
}

func (f *Framework) SetConfiguration(o framework.Observer) {
	f.observer = o
	o.OnInit()
}

func (f *Framework) SetFilter(keep func(framework.Case) bool) {
	f.keep = keep
}

// Observer returns the installed observer.
func (f *Framework) Observer() framework.Observer {
	return f.observer
}

func (f *Framework) Cases() []framework.Case {
	var out []framework.Case
	for _, c := range f.eligible() {
		out = append(out, c)
	}
	return out
}

func (f *Framework) eligible() []*Case {
	var out []*Case
	for _, c := range f.cases {
		if f.keep == nil || f.keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Starts returns how many times Start was called.
func (f *Framework) Starts() int {
	return int(f.starts.Load())
}

// Finished is closed once a started run has delivered OnDone.
func (f *Framework) Finished() <-chan struct{} {
	return f.done
}

// Start runs the script on a new goroutine.
func (f *Framework) Start(ctx context.Context) {
	f.starts.Add(1)
	go func() {
		defer close(f.done)
		f.run(ctx)
	}()
}

func (f *Framework) run(ctx context.Context) {
	o := f.observer
	o.OnStart()

	var s framework.Summary
	for _, c := range f.eligible() {
		if ctx.Err() != nil {
			break
		}
		o.OnTestStart(c)
		for _, msg := range c.logs {
			o.OnLogMessage(c, msg)
		}
		c.Resolve(c.planned)
		o.OnTestResult(c)
		if c.changed != framework.OutcomeUnset {
			c.Resolve(c.changed)
			o.OnTestResultChanged(c)
		}

		switch c.Outcome() {
		case framework.OutcomePass:
			s.Passed++
		case framework.OutcomeFail:
			s.Failed++
		default:
			s.Errors++
		}
		s.Results = append(s.Results, c)
	}
	s.Uncaught = f.Uncaught

	o.OnSummary(s)
	o.OnDone(s.Failed == 0 && s.Errors == 0 && s.Uncaught == "")
}
