// Package testparser decodes `go test -json` output.
package testparser

import "fmt"

// FailedTest is one failing top-level test and its extracted reason.
type FailedTest struct {
	Name   string // "<import path> <TestName>"
	Reason string
}

// TestCounts tallies top-level test results from one or more recordings.
type TestCounts struct {
	Passed      int
	Failed      int
	Skipped     int
	Total       int
	Parsed      bool         // at least one result was seen
	FailedTests []FailedTest // in failure order
}

// record counts one terminal action. It reports false for actions that
// are not results.
func (tc *TestCounts) record(action, name, reason string) bool {
	switch action {
	case ActionPass:
		tc.Passed++
	case ActionFail:
		tc.Failed++
		tc.FailedTests = append(tc.FailedTests, FailedTest{Name: name, Reason: reason})
	case ActionSkip:
		tc.Skipped++
	default:
		return false
	}
	tc.Total++
	tc.Parsed = true
	return true
}

// Add merges other into tc. Parsed stays true once any input had results.
func (tc *TestCounts) Add(other *TestCounts) {
	if other == nil {
		return
	}
	tc.Passed += other.Passed
	tc.Failed += other.Failed
	tc.Skipped += other.Skipped
	tc.Total += other.Total
	tc.FailedTests = append(tc.FailedTests, other.FailedTests...)
	tc.Parsed = tc.Parsed || other.Parsed
}

func (tc TestCounts) String() string {
	if !tc.Parsed {
		return "no test results"
	}
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)", tc.Passed, tc.Failed, tc.Skipped, tc.Total)
}
