package testparser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONParser(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedCounts TestCounts
	}{
		{
			name: "all passing",
			input: `{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestFoo"}
{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/pkg","Test":"TestFoo","Output":"=== RUN   TestFoo\n"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestBar"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestBar","Elapsed":0.02}`,
			expectedCounts: TestCounts{Passed: 2, Total: 2, Parsed: true},
		},
		{
			name: "mixed results",
			input: `{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestPass"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestPass","Elapsed":0.01}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestFail"}
{"Time":"2024-01-01T00:00:00Z","Action":"fail","Package":"example.com/pkg","Test":"TestFail","Elapsed":0.02}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestSkip"}
{"Time":"2024-01-01T00:00:00Z","Action":"skip","Package":"example.com/pkg","Test":"TestSkip","Elapsed":0.0}`,
			expectedCounts: TestCounts{
				Passed: 1, Failed: 1, Skipped: 1, Total: 3, Parsed: true,
				FailedTests: []FailedTest{{Name: "example.com/pkg TestFail"}},
			},
		},
		{
			name: "subtests not counted",
			input: `{"Action":"run","Package":"example.com/pkg","Test":"TestTable"}
{"Action":"run","Package":"example.com/pkg","Test":"TestTable/one"}
{"Action":"pass","Package":"example.com/pkg","Test":"TestTable/one"}
{"Action":"run","Package":"example.com/pkg","Test":"TestTable/two"}
{"Action":"pass","Package":"example.com/pkg","Test":"TestTable/two"}
{"Action":"pass","Package":"example.com/pkg","Test":"TestTable"}`,
			expectedCounts: TestCounts{Passed: 1, Total: 1, Parsed: true},
		},
		{
			name:           "empty input",
			input:          "",
			expectedCounts: TestCounts{Parsed: false},
		},
		{
			name:           "no test events",
			input:          `{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/pkg","Output":"building...\n"}`,
			expectedCounts: TestCounts{Parsed: false},
		},
		{
			name: "package level events and stray lines ignored",
			input: `# example.com/pkg
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestFoo"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Elapsed":0.5}`,
			expectedCounts: TestCounts{Passed: 1, Total: 1, Parsed: true},
		},
	}

	parser := &JSONParser{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.ParseJSON(strings.NewReader(tt.input))
			if diff := cmp.Diff(tt.expectedCounts, result); diff != "" {
				t.Errorf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONParserFailedTestDetails(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedTests []FailedTest
	}{
		{
			name: "failure with reason",
			input: `{"Action":"run","Package":"example.com/pkg","Test":"TestBar"}
{"Action":"output","Package":"example.com/pkg","Test":"TestBar","Output":"    bar_test.go:15: expected 42, got 0\n"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestBar","Elapsed":0.02}`,
			expectedTests: []FailedTest{
				{Name: "example.com/pkg TestBar", Reason: "expected 42, got 0"},
			},
		},
		{
			name: "failure without explicit reason",
			input: `{"Action":"run","Package":"example.com/pkg","Test":"TestBar"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestBar","Elapsed":0.02}`,
			expectedTests: []FailedTest{
				{Name: "example.com/pkg TestBar", Reason: ""},
			},
		},
		{
			name: "subtest output explains parent",
			input: `{"Action":"run","Package":"example.com/pkg","Test":"TestTable"}
{"Action":"output","Package":"example.com/pkg","Test":"TestTable/bad","Output":"=== RUN   TestTable/bad\n"}
{"Action":"output","Package":"example.com/pkg","Test":"TestTable/bad","Output":"    table_test.go:31: row 3 mismatch\n"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestTable/bad"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestTable"}`,
			expectedTests: []FailedTest{
				{Name: "example.com/pkg TestTable", Reason: "row 3 mismatch"},
			},
		},
		{
			name: "failures keep stream order",
			input: `{"Action":"run","Package":"example.com/pkg","Test":"TestFoo"}
{"Action":"output","Package":"example.com/pkg","Test":"TestFoo","Output":"    foo_test.go:10: wrong value\n"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}
{"Action":"run","Package":"example.com/other","Test":"TestBar"}
{"Action":"output","Package":"example.com/other","Test":"TestBar","Output":"    bar_test.go:20: connection refused\n"}
{"Action":"fail","Package":"example.com/other","Test":"TestBar","Elapsed":0.02}`,
			expectedTests: []FailedTest{
				{Name: "example.com/pkg TestFoo", Reason: "wrong value"},
				{Name: "example.com/other TestBar", Reason: "connection refused"},
			},
		},
	}

	parser := &JSONParser{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.ParseJSON(strings.NewReader(tt.input))
			if diff := cmp.Diff(tt.expectedTests, result.FailedTests); diff != "" {
				t.Errorf("failed tests mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
		want   TestEvent
	}{
		{
			name:   "test event",
			line:   `{"Action":"fail","Package":"p","Test":"TestA/sub","Elapsed":1.5}`,
			wantOK: true,
			want:   TestEvent{Action: "fail", Package: "p", Test: "TestA/sub", Elapsed: 1.5},
		},
		{
			name:   "build event",
			line:   `{"ImportPath":"p [p.test]","Action":"build-fail"}`,
			wantOK: true,
			want:   TestEvent{Action: ActionBuildFail, ImportPath: "p [p.test]"},
		},
		{name: "plain text", line: "ok  \tp\t0.1s"},
		{name: "empty", line: ""},
		{name: "broken json", line: `{"Action":`},
		{name: "no action", line: `{"Package":"p"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeEvent([]byte(tt.line))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("event mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestTestEventNames(t *testing.T) {
	sub := TestEvent{Action: ActionPass, Test: "TestA/case_1/deep"}
	if sub.TopLevel() != "TestA" || !sub.IsSubtest() || !sub.IsTerminal() {
		t.Errorf("subtest: TopLevel=%q IsSubtest=%v IsTerminal=%v", sub.TopLevel(), sub.IsSubtest(), sub.IsTerminal())
	}
	top := TestEvent{Action: ActionOutput, Test: "TestA"}
	if top.TopLevel() != "TestA" || top.IsSubtest() || top.IsTerminal() {
		t.Errorf("top-level: TopLevel=%q IsSubtest=%v IsTerminal=%v", top.TopLevel(), top.IsSubtest(), top.IsTerminal())
	}
}

func TestExtractFailureReason(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"file line message", []string{"=== RUN   TestA\n", "    a_test.go:7: got 1\n"}, "got 1"},
		{"fallback to first line", []string{"--- FAIL: TestA (0.00s)\n", "something broke\n"}, "something broke"},
		{"only boilerplate", []string{"=== RUN   TestA\n", "--- FAIL: TestA (0.00s)\n"}, ""},
		{"truncated", []string{strings.Repeat("x", 150)}, strings.Repeat("x", 97) + "..."},
		{"truncated on a rune boundary", []string{strings.Repeat("é", 80)}, strings.Repeat("é", 48) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFailureReason(tt.lines); got != tt.want {
				t.Errorf("ExtractFailureReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPanic(t *testing.T) {
	lines := []string{
		"=== RUN   TestBoom\n",
		"panic: boom [recovered]\n",
		"\tpanic: boom\n",
		"goroutine 6 [running]:\n",
	}
	want := "panic: boom [recovered]\n\tpanic: boom\ngoroutine 6 [running]:"
	if got := ExtractPanic(lines); got != want {
		t.Errorf("ExtractPanic() = %q, want %q", got, want)
	}
	if got := ExtractPanic([]string{"    a_test.go:3: fine\n"}); got != "" {
		t.Errorf("ExtractPanic() without panic = %q", got)
	}
}

// FuzzJSONParser checks the parser's invariants on arbitrary input.
// Run: go test -fuzz=FuzzJSONParser -fuzztime=30s ./internal/testparser
func FuzzJSONParser(f *testing.F) {
	seeds := []string{
		`{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example","Test":"TestFoo"}`,
		`{"Action":"run","Test":"TestFoo"}
{"Action":"output","Test":"TestFoo/sub","Output":"testing...\n"}
{"Action":"fail","Test":"TestFoo"}`,
		"",
		"{}",
		`{"Action":`,
		`{Action: pass}`,
		`{"Action":"output","Test":"Test","Output":"` + strings.Repeat("x", 10000) + `"}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	parser := &JSONParser{}
	f.Fuzz(func(t *testing.T, input string) {
		result := parser.ParseJSON(strings.NewReader(input))

		if result.Parsed && result.Total != result.Passed+result.Failed+result.Skipped {
			t.Errorf("total mismatch: %+v", result)
		}
		if !result.Parsed && result.Total != 0 {
			t.Errorf("unparsed result has counts: %+v", result)
		}
		if len(result.FailedTests) != result.Failed {
			t.Errorf("FailedTests length %d != Failed %d", len(result.FailedTests), result.Failed)
		}
	})
}

// BenchmarkJSONParser benchmarks go test -json parsing.
func BenchmarkJSONParser(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString(`{"Action":"run","Package":"example.com/pkg","Test":"TestFoo"}` + "\n")
		sb.WriteString(`{"Action":"output","Package":"example.com/pkg","Test":"TestFoo","Output":"    foo_test.go:1: x\n"}` + "\n")
		sb.WriteString(`{"Action":"fail","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}` + "\n")
	}
	input := sb.String()

	parser := &JSONParser{}
	for b.Loop() {
		parser.ParseJSON(strings.NewReader(input))
	}
}
