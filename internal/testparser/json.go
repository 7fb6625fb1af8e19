package testparser

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"
)

// Actions emitted by go test -json (see go doc test2json).
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionOutput      = "output"
	ActionPass        = "pass"
	ActionFail        = "fail"
	ActionSkip        = "skip"
	ActionBench       = "bench"
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time       string  `json:"Time"`
	Action     string  `json:"Action"`
	Package    string  `json:"Package"`
	ImportPath string  `json:"ImportPath,omitempty"`
	Test       string  `json:"Test"`
	Elapsed    float64 `json:"Elapsed"`
	Output     string  `json:"Output"`
}

// IsTerminal reports whether the event ends a test or package.
func (e *TestEvent) IsTerminal() bool {
	return e.Action == ActionPass || e.Action == ActionFail || e.Action == ActionSkip
}

// TopLevel returns the top-level test name, stripping any subtest path.
func (e *TestEvent) TopLevel() string {
	name, _, _ := strings.Cut(e.Test, "/")
	return name
}

// IsSubtest reports whether the event belongs to a subtest.
func (e *TestEvent) IsSubtest() bool {
	return strings.Contains(e.Test, "/")
}

// DecodeEvent decodes a single go test -json line.
// Lines that are not JSON objects (such as stray build output) return ok=false.
func DecodeEvent(line []byte) (TestEvent, bool) {
	var event TestEvent
	if len(line) == 0 || line[0] != '{' {
		return event, false
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return event, false
	}
	return event, event.Action != ""
}

// NewScanner returns a line scanner sized for long go test -json output lines.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

// JSONParser counts top-level test results in go test -json output.
// Subtest output is attributed to its top-level test; subtest results are not counted.
type JSONParser struct{}

// ParseJSON parses go test -json output from a reader and returns test counts.
func (p *JSONParser) ParseJSON(r io.Reader) TestCounts {
	counts := TestCounts{}
	scanner := NewScanner(r)

	currentOutput := make(map[string][]string) // "<pkg> <test>" -> output lines

	for scanner.Scan() {
		event, ok := DecodeEvent(scanner.Bytes())
		if !ok || event.Test == "" {
			continue
		}

		name := event.TopLevel()
		if event.Package != "" {
			name = event.Package + " " + name
		}
		if event.Action == ActionOutput {
			if event.Output != "" {
				currentOutput[name] = append(currentOutput[name], event.Output)
			}
			continue
		}
		if event.IsSubtest() {
			continue
		}

		var reason string
		if event.Action == ActionFail {
			reason = ExtractFailureReason(currentOutput[name])
		}
		if counts.record(event.Action, name, reason) {
			delete(currentOutput, name)
		}
	}

	return counts
}

// maxReasonLen bounds the length of an extracted failure reason.
const maxReasonLen = 100

// ExtractFailureReason extracts the most relevant failure message from test output.
func ExtractFailureReason(outputLines []string) string {
	// Look for lines with file:line: pattern (typical Go test error format)
	for _, line := range outputLines {
		trimmed := strings.TrimSpace(line)
		// Skip empty lines and common noise
		if trimmed == "" || isBoilerplate(trimmed) {
			continue
		}
		// Look for error lines (file.go:123: message)
		if strings.Contains(trimmed, ".go:") && strings.Contains(trimmed, ": ") {
			// Extract just the message part
			idx := strings.Index(trimmed, ".go:")
			afterFile := trimmed[idx+4:]
			if colonIdx := strings.Index(afterFile, ": "); colonIdx != -1 {
				return truncate(strings.TrimSpace(afterFile[colonIdx+2:]))
			}
		}
	}

	// Fallback: return the first non-empty, non-boilerplate line
	for _, line := range outputLines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !isBoilerplate(trimmed) {
			return truncate(trimmed)
		}
	}

	return ""
}

// ExtractPanic returns the output from the first "panic:" line onward, or "" if the
// test did not panic.
func ExtractPanic(outputLines []string) string {
	for i, line := range outputLines {
		if strings.HasPrefix(strings.TrimSpace(line), "panic:") {
			return strings.TrimRight(strings.Join(outputLines[i:], ""), "\n")
		}
	}
	return ""
}

func isBoilerplate(trimmed string) bool {
	for _, prefix := range []string{"=== RUN", "=== PAUSE", "=== CONT", "--- FAIL", "--- PASS", "--- SKIP"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// truncate shortens reason to at most maxReasonLen bytes without splitting a rune.
func truncate(reason string) string {
	if len(reason) <= maxReasonLen {
		return reason
	}
	cut := maxReasonLen - 3
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut] + "..."
}
