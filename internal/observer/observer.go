// Package observer implements the test framework's lifecycle callbacks for testtask.
//
// An Observer turns framework events into diagnostics, hands the end-of-run summary to the
// summary aggregator and resolves the run's completion signal when the framework is done.
package observer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/completion"
	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// ErrRunFailed is the failure outcome of a run that did not succeed.
var ErrRunFailed = errors.New("the test run did not complete successfully")

// Observer implements framework.Observer.
// Callbacks are expected one at a time, as the framework contract guarantees.
type Observer struct {
	sink       diag.Sink
	aggregator *summary.Aggregator
	signal     *completion.Signal

	tally    summary.Tally
	reported []framework.Case
}

var _ framework.Observer = (*Observer)(nil)

// New creates an Observer logging to sink, summarizing with mode, and resolving signal.
func New(sink diag.Sink, mode summary.Mode, signal *completion.Signal) *Observer {
	return &Observer{
		sink:       sink,
		aggregator: summary.New(mode, sink),
		signal:     signal,
	}
}

func (o *Observer) OnInit() {
	o.sink.Config("test configuration initialized")
}

func (o *Observer) OnStart() {
	o.sink.Trace("test run started")
}

func (o *Observer) OnTestStart(c framework.Case) {
	o.sink.Trace("start: %s", c.Description())
}

func (o *Observer) OnLogMessage(c framework.Case, message string) {
	if c == nil {
		o.sink.Trace("%s", message)
		return
	}
	o.sink.Trace("%s\n%s", c.Description(), message)
}

// OnTestResult logs a case's result. A result without an outcome is an invariant
// violation in the framework and panics.
func (o *Observer) OnTestResult(c framework.Case) {
	outcome := c.Outcome()
	if outcome == framework.OutcomeUnset {
		panic(fmt.Sprintf("observer: result reported for %q without an outcome", c.Description()))
	}

	if outcome == framework.OutcomePass {
		o.sink.Info("%s -- PASS", c.Description())
	} else {
		o.sink.Severe("%s", resultBlock(c))
	}
	o.sink.Trace("%s ran in %s", c.Description(), c.RunningTime())
}

// OnTestResultChanged logs an overwritten result. It is always severe and does not
// affect the run's success, which the final tally alone decides.
func (o *Observer) OnTestResultChanged(c framework.Case) {
	o.sink.Severe("result changed after it was reported\n%s", resultBlock(c))
}

func (o *Observer) OnSummary(s framework.Summary) {
	o.reported = s.Results
	o.tally = o.aggregator.Report(s)
}

// OnDone resolves the completion signal. It is the only place the signal is resolved.
func (o *Observer) OnDone(success bool) {
	if success {
		o.signal.Resolve(nil)
		return
	}
	o.signal.Resolve(ErrRunFailed)
}

// Tally returns the tally computed in OnSummary. It is only meaningful once the
// completion signal has resolved.
func (o *Observer) Tally() summary.Tally {
	return o.tally
}

// Results returns the cases reported in the summary.
func (o *Observer) Results() []framework.Case {
	return o.reported
}

func resultBlock(c framework.Case) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", c.Outcome(), c.Description())
	if msg := c.Message(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
	}
	if stack := c.StackTrace(); stack != "" {
		b.WriteString("\n")
		b.WriteString(stack)
	}
	return b.String()
}
