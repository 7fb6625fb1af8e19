// Package framework defines the boundary between testtask and the test framework it drives.
//
// A Framework owns test discovery, execution order and the assertion mechanism. testtask only
// configures it before a run and observes its lifecycle through an Observer.
package framework

import (
	"context"
	"time"
)

// Outcome is the terminal classification of a test case.
type Outcome int

const (
	OutcomeUnset Outcome = iota
	OutcomePass
	OutcomeFail
	OutcomeError
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	case OutcomeError:
		return "error"
	default:
		return "unset"
	}
}

// Case is a read-only view of a single test case.
// Cases are created and mutated only by the framework.
type Case interface {
	// Description identifies the case; it is expected to be unique within a run.
	Description() string
	Outcome() Outcome
	Message() string
	StackTrace() string
	RunningTime() time.Duration
}

// Summary is what the framework reports once every eligible case has resolved.
type Summary struct {
	Passed  int
	Failed  int
	Errors  int
	Results []Case
	// Uncaught is a top-level error raised outside any case; empty when none.
	Uncaught string
}

// Observer receives lifecycle events. The framework invokes callbacks one at a time.
type Observer interface {
	OnInit()
	OnStart()
	OnTestStart(c Case)
	// OnLogMessage reports output. c is nil for output not attributed to a case.
	OnLogMessage(c Case, message string)
	OnTestResult(c Case)
	OnTestResultChanged(c Case)
	OnSummary(s Summary)
	OnDone(success bool)
}

// Framework is the surface testtask consumes.
type Framework interface {
	// SetConfiguration installs the observer into the framework's configuration slot.
	SetConfiguration(o Observer)
	// SetFilter installs a predicate; cases it rejects are neither run nor reported.
	SetFilter(keep func(Case) bool)
	// Cases returns the cases currently eligible to run, in registration order.
	Cases() []Case
	// Start triggers the run and returns immediately. Completion is reported via OnDone.
	Start(ctx context.Context)
}
