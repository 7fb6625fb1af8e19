// Package summary renders the end-of-run report: itemized outcome buckets followed by a tally.
package summary

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/framework"
)

// Mode selects which outcome buckets are itemized.
type Mode int

const (
	ModeNone Mode = iota
	ModeAll
	ModePass
	ModeFail
	ModeError
)

var modeNames = map[Mode]string{
	ModeNone:  "none",
	ModeAll:   "all",
	ModePass:  "pass",
	ModeFail:  "fail",
	ModeError: "error",
}

// ModeNames returns the values accepted by the --summary flag.
func ModeNames() []string {
	return []string{"all", "pass", "fail", "error"}
}

// ParseMode parses a summary mode. The empty string and "none" mean no itemization.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeNone, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("invalid summary mode %q (valid: %s)", s, strings.Join(ModeNames(), ", "))
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Buckets returns the outcomes itemized by m, in reporting order.
func (m Mode) Buckets() []framework.Outcome {
	switch m {
	case ModeAll:
		return []framework.Outcome{framework.OutcomePass, framework.OutcomeFail, framework.OutcomeError}
	case ModePass:
		return []framework.Outcome{framework.OutcomePass}
	case ModeFail:
		return []framework.Outcome{framework.OutcomeFail}
	case ModeError:
		return []framework.Outcome{framework.OutcomeError}
	default:
		return nil
	}
}

// Tally is the final count of a run.
type Tally struct {
	Passed   int
	Failed   int
	Errors   int
	Uncaught string
	Success  bool
}

// String renders the tally line.
func (t Tally) String() string {
	return fmt.Sprintf("%d PASSED, %d FAILED, %d ERRORS", t.Passed, t.Failed, t.Errors)
}

// NewTally computes a tally from a framework summary.
func NewTally(s framework.Summary) Tally {
	return Tally{
		Passed:   s.Passed,
		Failed:   s.Failed,
		Errors:   s.Errors,
		Uncaught: s.Uncaught,
		Success:  s.Failed == 0 && s.Errors == 0 && s.Uncaught == "",
	}
}

// Aggregator writes the end-of-run report to a sink.
type Aggregator struct {
	mode Mode
	sink diag.Sink
}

// New creates an Aggregator for mode writing to sink.
func New(mode Mode, sink diag.Sink) *Aggregator {
	return &Aggregator{mode: mode, sink: sink}
}

// Mode returns the configured summary mode.
func (a *Aggregator) Mode() Mode {
	return a.mode
}

// Report itemizes the enabled buckets, then logs the tally line.
// The tally is logged at info on success and severe otherwise.
func (a *Aggregator) Report(s framework.Summary) Tally {
	t := NewTally(s)

	for _, bucket := range a.mode.Buckets() {
		ch := a.sink.Sub(ChannelName(bucket))
		for _, c := range s.Results {
			if c.Outcome() != bucket {
				continue
			}
			if bucket == framework.OutcomePass {
				ch.Info("%s", c.Description())
				continue
			}
			ch.Severe("%s", itemLine(c))
		}
	}

	if t.Uncaught != "" {
		a.sink.Severe("uncaught error: %s", t.Uncaught)
	}

	if t.Success {
		a.sink.Info("%s", t)
	} else {
		a.sink.Severe("%s", t)
	}
	return t
}

// ChannelName returns the sub-channel used for an outcome bucket, e.g. "FAIL".
func ChannelName(o framework.Outcome) string {
	return cases.Upper(language.Und).String(o.String())
}

func itemLine(c framework.Case) string {
	msg, _, _ := strings.Cut(c.Message(), "\n")
	if msg == "" {
		return c.Description()
	}
	return c.Description() + ": " + msg
}
