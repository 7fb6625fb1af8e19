package gotest

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/testparser"
)

// incompleteMessage is the message of a case that started but never reported a result.
const incompleteMessage = "test did not complete"

// Stream converts go test -json events into observer callbacks for one run.
// It is not safe for concurrent use; events must be fed in order from one goroutine.
type Stream struct {
	obs    framework.Observer
	lookup func(pkg, name string) *Case

	results []framework.Case
	counts  map[framework.Outcome]int

	running   map[string][]*Case // package -> started, unresolved cases
	pkgOutput map[string][]string
	pkgBroken map[string]bool // package has a failed or errored case, or an uncaught error
	uncaught  []string
}

// NewStream creates a Stream reporting to obs. Events for cases that lookup does not
// return are dropped, so filtered cases never reach the observer.
func NewStream(obs framework.Observer, lookup func(pkg, name string) *Case) *Stream {
	return &Stream{
		obs:       obs,
		lookup:    lookup,
		counts:    make(map[framework.Outcome]int),
		running:   make(map[string][]*Case),
		pkgOutput: make(map[string][]string),
		pkgBroken: make(map[string]bool),
	}
}

// Consume reads events from r until EOF. Lines that are not events are logged
// as unattributed output.
func (s *Stream) Consume(r io.Reader) {
	scanner := testparser.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		event, ok := testparser.DecodeEvent(line)
		if !ok {
			if text := strings.TrimSpace(string(line)); text != "" {
				s.obs.OnLogMessage(nil, text)
			}
			continue
		}
		s.Process(event)
	}
	if err := scanner.Err(); err != nil {
		s.Uncaught(fmt.Sprintf("read test output: %v", err))
		// Drain so the producer is never blocked on a pipe nobody reads.
		_, _ = io.Copy(io.Discard, r)
	}
}

// Process handles a single event.
func (s *Stream) Process(ev testparser.TestEvent) {
	switch ev.Action {
	case testparser.ActionBuildOutput:
		pkg := buildPackage(ev.ImportPath)
		s.pkgOutput[pkg] = append(s.pkgOutput[pkg], ev.Output)
		s.obs.OnLogMessage(nil, strings.TrimRight(ev.Output, "\n"))
		return
	case testparser.ActionBuildFail:
		pkg := buildPackage(ev.ImportPath)
		s.uncaughtFor(pkg, fmt.Sprintf("build failed: %s", pkg))
		return
	}

	if ev.Test == "" {
		s.processPackage(ev)
		return
	}

	c := s.lookup(ev.Package, ev.TopLevel())
	if c == nil {
		return
	}

	switch ev.Action {
	case testparser.ActionRun:
		if ev.IsSubtest() || c.started {
			return
		}
		c.started = true
		s.running[ev.Package] = append(s.running[ev.Package], c)
		s.obs.OnTestStart(c)
	case testparser.ActionOutput:
		c.output = append(c.output, ev.Output)
		s.obs.OnLogMessage(c, strings.TrimRight(ev.Output, "\n"))
	case testparser.ActionPass, testparser.ActionFail, testparser.ActionSkip:
		if ev.IsSubtest() {
			return
		}
		s.resolve(c, ev)
	}
}

func (s *Stream) processPackage(ev testparser.TestEvent) {
	switch ev.Action {
	case testparser.ActionOutput:
		s.pkgOutput[ev.Package] = append(s.pkgOutput[ev.Package], ev.Output)
		s.obs.OnLogMessage(nil, strings.TrimRight(ev.Output, "\n"))
	case testparser.ActionFail:
		s.finishPackage(ev.Package, true)
	case testparser.ActionPass, testparser.ActionSkip:
		s.finishPackage(ev.Package, false)
	}
}

func (s *Stream) resolve(c *Case, ev testparser.TestEvent) {
	outcome, message, stack := classify(ev.Action, c.output)
	previous := c.outcome

	c.outcome = outcome
	c.message = message
	c.stack = stack
	c.elapsed = time.Duration(ev.Elapsed * float64(time.Second))
	s.markDone(ev.Package, c)

	if previous != framework.OutcomeUnset {
		s.counts[previous]--
		s.counts[outcome]++
		s.markBroken(ev.Package, outcome)
		s.obs.OnTestResultChanged(c)
		return
	}

	s.counts[outcome]++
	s.results = append(s.results, c)
	s.markBroken(ev.Package, outcome)
	s.obs.OnTestResult(c)
}

// classify maps a terminal action and the case's output to an outcome.
// A failure whose output shows a panic is an error rather than an assertion failure.
func classify(action string, output []string) (framework.Outcome, string, string) {
	switch action {
	case testparser.ActionPass:
		return framework.OutcomePass, "", ""
	case testparser.ActionSkip:
		return framework.OutcomePass, "skipped", ""
	}
	if stack := testparser.ExtractPanic(output); stack != "" {
		msg, _, _ := strings.Cut(stack, "\n")
		return framework.OutcomeError, strings.TrimSpace(msg), stack
	}
	return framework.OutcomeFail, testparser.ExtractFailureReason(output), ""
}

func (s *Stream) markDone(pkg string, c *Case) {
	running := s.running[pkg]
	for i, r := range running {
		if r == c {
			s.running[pkg] = append(running[:i], running[i+1:]...)
			return
		}
	}
}

func (s *Stream) markBroken(pkg string, o framework.Outcome) {
	if o == framework.OutcomeFail || o == framework.OutcomeError {
		s.pkgBroken[pkg] = true
	}
}

// finishPackage resolves cases cut short by the package ending and records a
// package failure that no case accounts for.
func (s *Stream) finishPackage(pkg string, failed bool) {
	s.abandon(pkg)
	if failed && !s.pkgBroken[pkg] {
		msg := fmt.Sprintf("package %s failed", pkg)
		if reason := testparser.ExtractFailureReason(s.pkgOutput[pkg]); reason != "" {
			msg += ": " + reason
		}
		s.uncaughtFor(pkg, msg)
	}
	delete(s.pkgOutput, pkg)
}

// abandon reports every started, unresolved case of pkg as an error.
func (s *Stream) abandon(pkg string) {
	running := s.running[pkg]
	delete(s.running, pkg)
	stack := testparser.ExtractPanic(s.pkgOutput[pkg])
	for _, c := range running {
		if stack == "" {
			stack = testparser.ExtractPanic(c.output)
		}
		c.outcome = framework.OutcomeError
		c.message = incompleteMessage
		c.stack = stack
		s.counts[framework.OutcomeError]++
		s.results = append(s.results, c)
		s.pkgBroken[pkg] = true
		s.obs.OnTestResult(c)
	}
}

func (s *Stream) uncaughtFor(pkg, msg string) {
	if s.pkgBroken[pkg] {
		return
	}
	s.pkgBroken[pkg] = true
	s.Uncaught(msg)
}

// Uncaught records a top-level error that fails the run.
func (s *Stream) Uncaught(msg string) {
	s.uncaught = append(s.uncaught, msg)
}

// Finish reports unfinished cases, then delivers the summary and the done event.
func (s *Stream) Finish() {
	pkgs := make([]string, 0, len(s.running))
	for pkg := range s.running {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	for _, pkg := range pkgs {
		s.abandon(pkg)
	}

	summary := framework.Summary{
		Passed:   s.counts[framework.OutcomePass],
		Failed:   s.counts[framework.OutcomeFail],
		Errors:   s.counts[framework.OutcomeError],
		Results:  s.results,
		Uncaught: strings.Join(s.uncaught, "; "),
	}
	s.obs.OnSummary(summary)
	s.obs.OnDone(summary.Failed == 0 && summary.Errors == 0 && summary.Uncaught == "")
}

// buildPackage extracts the package path from a build event's ImportPath,
// which may carry a test variant suffix such as "pkg [pkg.test]".
func buildPackage(importPath string) string {
	pkg, _, _ := strings.Cut(importPath, " ")
	return pkg
}
