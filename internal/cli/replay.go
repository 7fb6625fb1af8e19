package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/errors"
	"github.com/AndreyAkinshin/testtask/internal/gotest"
	"github.com/AndreyAkinshin/testtask/internal/testparser"
)

// stdin is read when the replay input is "-".
var stdin io.Reader = os.Stdin

// cmdReplay drives the test task from recorded go test -json output.
func cmdReplay(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printReplayUsage()
		return 0
	}

	counts := false
	var positional []string
	for _, arg := range args {
		switch {
		case arg == "--counts":
			counts = true
		case arg == "-":
			positional = append(positional, arg)
		case strings.HasPrefix(arg, "-"):
			out.ErrorPrefix("replay: unknown flag: %s", arg)
			printReplayUsage()
			return errors.ExitConfigError
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		out.ErrorPrefix("replay: input required (a file, or - for stdin)")
		printReplayUsage()
		return errors.ExitConfigError
	}

	if counts {
		return cmdReplayCounts(positional)
	}

	input, closeInput, err := openInput(positional[0])
	if err != nil {
		out.ErrorPrefix("replay: %v", err)
		return errors.ExitRuntimeError
	}
	rep, err := gotest.NewReplay(input)
	closeInput()
	if err != nil {
		out.ErrorPrefix("replay: %v", err)
		return errors.ExitRuntimeError
	}

	s, code := newSession(opts, append(positional[1:], opts.Passthrough...))
	if s == nil {
		return code
	}
	defer s.close()

	s.sink.Config("replaying %s", positional[0])
	return s.execute(rep, rep.Discover)
}

// cmdReplayCounts counts top-level results across recordings and prints a summary.
func cmdReplayCounts(inputs []string) int {
	var total testparser.TestCounts
	parser := &testparser.JSONParser{}

	for _, name := range inputs {
		input, closeInput, err := openInput(name)
		if err != nil {
			out.ErrorPrefix("replay: %v", err)
			return errors.ExitRuntimeError
		}
		counts := parser.ParseJSON(input)
		closeInput()

		if len(inputs) > 1 {
			out.SummaryItem(name, counts.String())
		}
		total.Add(&counts)
	}

	if !total.Parsed {
		out.ErrorPrefix("replay: no test results found in input")
		out.Hint("hint: use 'go test -json ./...' to produce JSON output")
		return errors.ExitRuntimeError
	}

	printTestSummary(&total)

	if total.Failed > 0 {
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

// openInput opens a named file, or stdin for "-".
func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// printTestSummary prints a formatted test summary.
func printTestSummary(counts *testparser.TestCounts) {
	out.SummaryHeader("Test Summary")

	out.SummaryItem("Passed", fmt.Sprintf("%d", counts.Passed))
	if counts.Failed > 0 {
		out.SummaryItem("Failed", fmt.Sprintf("%d", counts.Failed))
	}
	if counts.Skipped > 0 {
		out.SummaryItem("Skipped", fmt.Sprintf("%d", counts.Skipped))
	}
	out.SummaryItem("Total", fmt.Sprintf("%d", counts.Total))

	if len(counts.FailedTests) > 0 {
		out.Println("")
		out.Println("Failed tests:")
		for _, ft := range counts.FailedTests {
			if ft.Reason != "" {
				out.SummaryItem("  "+ft.Name, ft.Reason)
			} else {
				out.Println("    %s", ft.Name)
			}
		}
	}

	if counts.Failed == 0 {
		out.FinalSuccess("All %d tests passed.", counts.Total)
	} else {
		out.FinalFailure("%d of %d tests failed.", counts.Failed, counts.Total)
	}
}

func printReplayUsage() {
	out.HelpTitle("testtask replay - run the test task over recorded go test -json output")
	out.HelpSection("Usage:")
	out.HelpUsage("testtask replay [flags] <file|-> [<term>...]")
	out.HelpUsage("testtask replay --counts <file|->...")
	out.HelpSection("Description:")
	out.Println("  Replays a recorded stream through the same filter, observer and summary")
	out.Println("  as a live run. With --counts, only totals and failure reasons are printed.")
	out.Println("")
	out.HelpSection("Options:")
	out.HelpFlag("--counts", "Print result counts instead of running the task", helpFlagWidth)
	printGlobalFlags()
	out.HelpSection("Examples:")
	out.HelpExample("go test -json ./... | testtask replay -", "Replay from stdin")
	out.HelpExample("testtask replay -s fail run.json parser", "Itemize failing parser tests")
	out.HelpExample("testtask replay --counts a.json b.json", "Count results across recordings")
	out.Println("")
}
