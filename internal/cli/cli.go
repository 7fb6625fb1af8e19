// Package cli provides the command-line interface for testtask.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/errors"
	"github.com/AndreyAkinshin/testtask/internal/output"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// Version is set at build time.
var Version = "dev"

// out is the shared output writer for CLI commands.
var out = output.New()

// taskName names the single task this CLI hosts.
const taskName = "test"

// Help text alignment widths for consistent formatting.
const (
	helpCommandWidth = 22
	helpFlagWidth    = 24
)

// commands are the first-position words routed to a subcommand.
// Any other first argument is a filter term for the default run command.
var commands = map[string]bool{
	"run":        true,
	"replay":     true,
	"config":     true,
	"completion": true,
	"version":    true,
	"help":       true,
}

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			printUsage()
			return 0
		case "--version", "version":
			out.Println("testtask %s", Version)
			return 0
		}
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	cmd := "run"
	cmdArgs := remaining
	if len(remaining) > 0 && commands[remaining[0]] {
		cmd = remaining[0]
		cmdArgs = remaining[1:]
	}

	switch cmd {
	case "replay":
		return cmdReplay(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	case "version":
		out.Println("testtask %s", Version)
		return 0
	case "help":
		printUsage()
		return 0
	default:
		return cmdRun(cmdArgs, opts)
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	List       bool
	Summary    string
	Timeout    time.Duration
	Packages   []string
	ConfigPath string
	ReportPath string
	LogLevel   string
	LogJSON    bool
	Quiet      bool
	Verbose    bool

	// Passthrough holds the arguments after --, which are always filter terms.
	Passthrough []string
}

// valueFlags maps every spelling of a flag that takes a value to its long name.
var valueFlags = map[string]string{
	"-s":          "--summary",
	"--summary":   "--summary",
	"-t":          "--timeout",
	"--timeout":   "--timeout",
	"-p":          "--package",
	"--package":   "--package",
	"--config":    "--config",
	"--report":    "--report",
	"--log-level": "--log-level",
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Flags may appear anywhere, before or after the command. Value flags accept both
// "--flag value" and "--flag=value". Unrecognized arguments, including unknown
// flags, are returned for the command to interpret; everything after -- is kept
// verbatim in Passthrough.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			opts.Passthrough = append(opts.Passthrough, args[i+1:]...)
			i = len(args)
		case arg == "-l" || arg == "--list":
			opts.List = true
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
		case arg == "--log-json":
			opts.LogJSON = true
		default:
			name, value, inline := strings.Cut(arg, "=")
			long, ok := valueFlags[name]
			if !ok {
				remaining = append(remaining, arg)
				continue
			}
			if !inline {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
			if err := opts.set(long, value); err != nil {
				return nil, nil, err
			}
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}

	// Quiet mode applies to every command's informational output.
	out.SetQuiet(opts.Quiet)

	return opts, remaining, nil
}

func (o *GlobalOptions) set(flag, value string) error {
	switch flag {
	case "--summary":
		if _, err := summary.ParseMode(value); err != nil {
			return fmt.Errorf("invalid --summary value %q\n  valid values: %s\n  example: testtask --summary=fail",
				value, strings.Join(summary.ModeNames(), ", "))
		}
		o.Summary = value
	case "--timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid --timeout value %q (use a positive Go duration such as 30s or 2m)", value)
		}
		o.Timeout = d
	case "--package":
		if value == "" {
			return fmt.Errorf("--package requires a non-empty pattern")
		}
		o.Packages = append(o.Packages, value)
	case "--config":
		o.ConfigPath = value
	case "--report":
		o.ReportPath = value
	case "--log-level":
		if _, err := diag.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid --log-level value %q\n  valid values: %s", value, strings.Join(diag.LevelNames(), ", "))
		}
		o.LogLevel = value
	}
	return nil
}

// validateGlobalOptions checks that global options are valid together.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

func printUsage() {
	out.HelpTitle("testtask - run Go tests through a filtered, summarized test task")

	out.HelpSection("Usage:")
	out.HelpUsage("testtask [flags] [<term>...]            Run tests whose description contains every term")
	out.HelpUsage("testtask replay [flags] <file> [<term>...]  Drive the task from recorded go test -json output")
	out.HelpUsage("testtask <command> [args]")

	out.HelpSection("Commands:")
	out.HelpCommand("run", "Run tests (default)", helpCommandWidth)
	out.HelpCommand("replay <file|->", "Replay a recorded go test -json stream", helpCommandWidth)
	out.HelpCommand("replay --counts <file>...", "Count results in recorded streams", helpCommandWidth)
	out.HelpCommand("config validate", "Validate testtask.json / testtask.yaml", helpCommandWidth)
	out.HelpCommand("completion <shell>", "Generate shell completion (bash, zsh, fish)", helpCommandWidth)
	out.HelpCommand("version", "Show version information", helpCommandWidth)

	printGlobalFlags()

	out.HelpSection("Examples:")
	out.HelpExample("testtask", "Run every test in ./...")
	out.HelpExample("testtask --list parser", "List tests whose description contains \"parser\"")
	out.HelpExample("testtask -s fail -t 2m -p ./internal/cli", "Itemize failures in one package, wait up to two minutes")
	out.HelpExample("go test -json ./... > run.json && testtask replay run.json", "Summarize a recorded run")
	out.Println("")
}

func printGlobalFlags() {
	out.HelpSection("Flags:")
	out.HelpFlag("-l, --list", "List matching tests instead of running them", helpFlagWidth)
	out.HelpFlag("-s, --summary=<mode>", "Itemize results: "+strings.Join(summary.ModeNames(), ", "), helpFlagWidth)
	out.HelpFlag("-t, --timeout=<duration>", "Maximum wait for the run (default 20s)", helpFlagWidth)
	out.HelpFlag("-p, --package=<pattern>", "Package pattern to test (repeatable)", helpFlagWidth)
	out.HelpFlag("--config=<path>", "Use this config file instead of searching", helpFlagWidth)
	out.HelpFlag("--report=<path>", "Write a JSON or YAML run report", helpFlagWidth)
	out.HelpFlag("--log-level=<level>", "Diagnostics level: "+strings.Join(diag.LevelNames(), ", "), helpFlagWidth)
	out.HelpFlag("--log-json", "Write diagnostics as JSON lines", helpFlagWidth)
	out.HelpFlag("-q, --quiet", "Warnings and errors only", helpFlagWidth)
	out.HelpFlag("-v, --verbose", "Trace every test event", helpFlagWidth)
	out.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	out.HelpFlag("--version", "Show version", helpFlagWidth)
	out.HelpFlag("--", "Treat the remaining arguments as filter terms", helpFlagWidth)
}
