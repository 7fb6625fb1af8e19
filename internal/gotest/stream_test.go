package gotest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/testparser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is an Observer that records lifecycle events as strings.
type recorder struct {
	events  []string
	logs    []string
	summary framework.Summary
	done    chan bool
}

func newRecorder() *recorder {
	return &recorder{done: make(chan bool, 1)}
}

func (r *recorder) OnInit()  { r.events = append(r.events, "init") }
func (r *recorder) OnStart() { r.events = append(r.events, "start") }
func (r *recorder) OnTestStart(c framework.Case) {
	r.events = append(r.events, "run "+c.Description())
}
func (r *recorder) OnLogMessage(c framework.Case, msg string) {
	if c == nil {
		r.logs = append(r.logs, msg)
		return
	}
	r.logs = append(r.logs, c.Description()+": "+msg)
}
func (r *recorder) OnTestResult(c framework.Case) {
	r.events = append(r.events, "result "+c.Description()+" "+c.Outcome().String())
}
func (r *recorder) OnTestResultChanged(c framework.Case) {
	r.events = append(r.events, "changed "+c.Description()+" "+c.Outcome().String())
}
func (r *recorder) OnSummary(s framework.Summary) {
	r.summary = s
	r.events = append(r.events, "summary")
}
func (r *recorder) OnDone(success bool) { r.done <- success }

// ev renders one go test -json line.
func ev(action, pkg, test, output string) string {
	data, err := json.Marshal(testparser.TestEvent{Action: action, Package: pkg, Test: test, Output: output})
	if err != nil {
		panic(err)
	}
	return string(data)
}

func lines(events ...string) string {
	return strings.Join(events, "\n") + "\n"
}

// allCases registers every test it is asked about.
func allCases() (*registry, func(pkg, name string) *Case) {
	r := &registry{}
	return r, func(pkg, name string) *Case { return r.add(pkg, name) }
}

func consume(t *testing.T, lookup func(pkg, name string) *Case, input string) (*recorder, bool) {
	t.Helper()
	rec := newRecorder()
	s := NewStream(rec, lookup)
	s.Consume(strings.NewReader(input))
	s.Finish()
	return rec, <-rec.done
}

func TestStream_Outcomes(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestPass", ""),
		ev("pass", pkg, "TestPass", ""),
		ev("run", pkg, "TestFail", ""),
		ev("output", pkg, "TestFail", "    p_test.go:12: expected 42, got 0\n"),
		ev("fail", pkg, "TestFail", ""),
		ev("run", pkg, "TestSkip", ""),
		ev("skip", pkg, "TestSkip", ""),
		ev("fail", pkg, "", ""),
	)
	_, lookup := allCases()

	rec, success := consume(t, lookup, input)

	if success {
		t.Error("run with a failure reported success")
	}
	want := []string{
		"run example.com/p TestPass",
		"result example.com/p TestPass pass",
		"run example.com/p TestFail",
		"result example.com/p TestFail fail",
		"run example.com/p TestSkip",
		"result example.com/p TestSkip pass",
		"summary",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	s := rec.summary
	if s.Passed != 2 || s.Failed != 1 || s.Errors != 0 || s.Uncaught != "" {
		t.Errorf("summary = %+v", s)
	}
	if got := s.Results[1].Message(); got != "expected 42, got 0" {
		t.Errorf("failure message = %q", got)
	}
	if got := s.Results[2].Message(); got != "skipped" {
		t.Errorf("skip message = %q", got)
	}
}

func TestStream_PanicIsError(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestBoom", ""),
		ev("output", pkg, "TestBoom", "panic: runtime error: index out of range [3] with length 1\n"),
		ev("output", pkg, "TestBoom", "goroutine 7 [running]:\n"),
		ev("fail", pkg, "TestBoom", ""),
	)
	_, lookup := allCases()

	rec, _ := consume(t, lookup, input)

	c := rec.summary.Results[0]
	if c.Outcome() != framework.OutcomeError {
		t.Fatalf("outcome = %v, want error", c.Outcome())
	}
	if c.Message() != "panic: runtime error: index out of range [3] with length 1" {
		t.Errorf("message = %q", c.Message())
	}
	if !strings.Contains(c.StackTrace(), "goroutine 7 [running]:") {
		t.Errorf("stack = %q", c.StackTrace())
	}
}

func TestStream_SubtestsFoldIntoParent(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestTable", ""),
		ev("run", pkg, "TestTable/case_1", ""),
		ev("output", pkg, "TestTable/case_1", "    t_test.go:9: bad case\n"),
		ev("fail", pkg, "TestTable/case_1", ""),
		ev("fail", pkg, "TestTable", ""),
	)
	_, lookup := allCases()

	rec, _ := consume(t, lookup, input)

	if len(rec.summary.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(rec.summary.Results))
	}
	if got := rec.summary.Results[0].Message(); got != "bad case" {
		t.Errorf("message = %q, want subtest failure", got)
	}
}

func TestStream_ResultChanged(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestLate", ""),
		ev("pass", pkg, "TestLate", ""),
		ev("output", pkg, "TestLate", "    late_test.go:3: Log in goroutine after TestLate has completed\n"),
		ev("fail", pkg, "TestLate", ""),
	)
	_, lookup := allCases()

	rec, success := consume(t, lookup, input)

	want := []string{
		"run example.com/p TestLate",
		"result example.com/p TestLate pass",
		"changed example.com/p TestLate fail",
		"summary",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if rec.summary.Passed != 0 || rec.summary.Failed != 1 || len(rec.summary.Results) != 1 {
		t.Errorf("summary = %+v", rec.summary)
	}
	if success {
		t.Error("changed-to-fail run reported success")
	}
}

func TestStream_PackageFailureWithoutCase(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("output", pkg, "", "FAIL\texample.com/p [setup failed]\n"),
		ev("fail", pkg, "", ""),
	)
	_, lookup := allCases()

	rec, success := consume(t, lookup, input)

	if success {
		t.Error("package failure reported success")
	}
	if !strings.HasPrefix(rec.summary.Uncaught, "package example.com/p failed") {
		t.Errorf("uncaught = %q", rec.summary.Uncaught)
	}
	if len(rec.logs) != 1 {
		t.Errorf("package output not logged: %v", rec.logs)
	}
}

func TestStream_BuildFailureReportedOnce(t *testing.T) {
	input := lines(
		`{"Action":"build-output","ImportPath":"example.com/p [example.com/p.test]","Output":"p.go:3:1: syntax error\n"}`,
		`{"Action":"build-fail","ImportPath":"example.com/p [example.com/p.test]"}`,
		ev("output", "example.com/p", "", "FAIL\texample.com/p [build failed]\n"),
		ev("fail", "example.com/p", "", ""),
	)
	_, lookup := allCases()

	rec, success := consume(t, lookup, input)

	if success {
		t.Error("build failure reported success")
	}
	if rec.summary.Uncaught != "build failed: example.com/p" {
		t.Errorf("uncaught = %q", rec.summary.Uncaught)
	}
}

func TestStream_UnfinishedCaseIsError(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestHang", ""),
		ev("output", pkg, "", "panic: test timed out after 1s\n"),
		ev("fail", pkg, "", ""),
		ev("run", "example.com/q", "TestCut", ""),
	)
	_, lookup := allCases()

	rec, _ := consume(t, lookup, input)

	if rec.summary.Errors != 2 {
		t.Fatalf("errors = %d, want 2: %+v", rec.summary.Errors, rec.summary)
	}
	hang := rec.summary.Results[0]
	if hang.Message() != incompleteMessage || !strings.Contains(hang.StackTrace(), "timed out") {
		t.Errorf("hang case = %q / %q", hang.Message(), hang.StackTrace())
	}
	if rec.summary.Uncaught != "" {
		t.Errorf("package failure explained by cases should not be uncaught: %q", rec.summary.Uncaught)
	}
}

func TestStream_FilteredCasesDropped(t *testing.T) {
	const pkg = "example.com/p"
	input := lines(
		ev("run", pkg, "TestKeep", ""),
		ev("pass", pkg, "TestKeep", ""),
		ev("run", pkg, "TestDrop", ""),
		ev("output", pkg, "TestDrop", "noise\n"),
		ev("fail", pkg, "TestDrop", ""),
	)
	r := &registry{}
	r.add(pkg, "TestKeep")
	r.add(pkg, "TestDrop")
	r.SetFilter(func(c framework.Case) bool { return strings.Contains(c.Description(), "Keep") })

	rec, success := consume(t, r.lookup, input)

	if !success {
		t.Error("filtered failure affected the run")
	}
	if len(rec.summary.Results) != 1 || rec.summary.Results[0].Description() != "example.com/p TestKeep" {
		t.Errorf("results = %v", rec.summary.Results)
	}
	for _, l := range rec.logs {
		if strings.Contains(l, "noise") {
			t.Errorf("filtered case output reached the observer: %q", l)
		}
	}
}

func TestStream_NonJSONLinesLogged(t *testing.T) {
	_, lookup := allCases()

	rec, success := consume(t, lookup, "# example.com/p\nvet: something odd\n\n")

	if !success {
		t.Error("stream without results should succeed")
	}
	want := []string{"# example.com/p", "vet: something odd"}
	if diff := cmp.Diff(want, rec.logs); diff != "" {
		t.Errorf("logs mismatch (-want +got):\n%s", diff)
	}
}
