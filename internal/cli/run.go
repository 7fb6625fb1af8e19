package cli

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AndreyAkinshin/testtask/internal/config"
	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/errors"
	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/gotest"
	"github.com/AndreyAkinshin/testtask/internal/observer"
	"github.com/AndreyAkinshin/testtask/internal/report"
	"github.com/AndreyAkinshin/testtask/internal/summary"
	"github.com/AndreyAkinshin/testtask/internal/task"
)

// Replaced in tests.
var (
	newGoRunner = func() gotest.Runner { return gotest.ExecRunner{} }

	// jsonLogs receives diagnostics when JSON logging is enabled.
	jsonLogs io.Writer = os.Stderr
)

// session is one task invocation with flags and configuration merged.
type session struct {
	cfg     *config.Config
	flags   task.Flags
	sink    diag.Sink
	logger  *zap.Logger
	timeout time.Duration
	report  string
}

// cmdRun runs the go test framework for the configured packages.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printUsage()
		return 0
	}

	terms, err := filterTerms(args, opts.Passthrough)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	s, code := newSession(opts, terms)
	if s == nil {
		return code
	}
	defer s.close()

	runner := newGoRunner()
	if checker, ok := runner.(interface{ Check() error }); ok {
		if err := checker.Check(); err != nil {
			out.ErrorPrefix("%v", errors.Environment("go toolchain unavailable", err))
			return errors.ExitEnvironmentError
		}
	}

	packages := s.cfg.Packages
	if len(opts.Packages) > 0 {
		packages = opts.Packages
	}

	fw := gotest.New(gotest.Options{
		Dir:      s.cfg.Dir,
		Packages: packages,
		GoFlags:  s.cfg.GoFlags,
		Runner:   runner,
	})
	s.sink.Config("packages %s", strings.Join(packages, " "))
	return s.execute(fw, fw.Discover)
}

// filterTerms rejects unknown flags among the positional terms.
// Terms after -- are taken as-is.
func filterTerms(args, passthrough []string) ([]string, error) {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("unknown flag: %s (use -- to pass it as a filter term)", arg)
		}
	}
	return append(append([]string(nil), args...), passthrough...), nil
}

// loadConfig loads the --config file, or discovers one from the working directory.
func loadConfig(opts *GlobalOptions) (*config.Config, int) {
	var (
		cfg      *config.Config
		warnings []string
		err      error
	)
	if opts.ConfigPath != "" {
		cfg, warnings, err = config.LoadAndValidate(opts.ConfigPath)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			out.ErrorPrefix("%v", errors.Environment("cannot determine working directory", cwdErr))
			return nil, errors.ExitEnvironmentError
		}
		cfg, warnings, err = config.Discover(cwd)
	}
	if err != nil {
		cfgErr := errors.Config("config", err)
		out.ErrorPrefix("%v", cfgErr)
		return nil, cfgErr.ExitCode()
	}
	for _, w := range warnings {
		out.WarningSimple("%s", w)
	}
	return cfg, 0
}

// newSession merges configuration with flags. Flags win over the config file.
func newSession(opts *GlobalOptions, terms []string) (*session, int) {
	cfg, code := loadConfig(opts)
	if cfg == nil {
		return nil, code
	}

	modeName := cfg.Summary
	if opts.Summary != "" {
		modeName = opts.Summary
	}
	mode, err := summary.ParseMode(modeName)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.ExitConfigError
	}

	level, err := resolveLevel(opts, cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.ExitConfigError
	}

	s := &session{
		cfg:     cfg,
		flags:   task.Flags{List: opts.List, Summary: mode, FilterTerms: terms},
		timeout: cfg.TimeoutDuration(),
		report:  cfg.Report,
	}
	if opts.Timeout > 0 {
		s.timeout = opts.Timeout
	}
	if opts.ReportPath != "" {
		s.report = opts.ReportPath
	}

	if opts.LogJSON || cfg.JSONLogs() {
		s.logger = diag.NewZapLogger(jsonLogs, level).Named("testtask")
		s.sink = diag.NewZap(s.logger, level)
	} else {
		s.sink = diag.NewText(out, level)
	}

	if cfg.Path != "" {
		s.sink.Config("using %s", cfg.Path)
	}
	s.sink.Config("summary %s, timeout %s", mode, s.timeout)
	return s, 0
}

// resolveLevel picks the diagnostics level: --log-level, then -v/-q, then config.
func resolveLevel(opts *GlobalOptions, cfg *config.Config) (diag.Level, error) {
	switch {
	case opts.LogLevel != "":
		return diag.ParseLevel(opts.LogLevel)
	case opts.Verbose:
		return diag.LevelTrace, nil
	case opts.Quiet:
		return diag.LevelWarning, nil
	case cfg.Log != nil && cfg.Log.Level != "":
		return diag.ParseLevel(cfg.Log.Level)
	default:
		return diag.ParseLevel(config.DefaultLogLevel)
	}
}

func (s *session) close() {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// execute runs fw as the test task and maps the outcome to an exit code.
func (s *session) execute(fw framework.Framework, setup func(context.Context) error) int {
	t := &task.Task{Framework: fw, Sink: s.sink, Setup: setup}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	err := classifyRunError(ctx, t.Run(ctx, s.flags))
	elapsed := time.Since(started)

	if s.flags.List {
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
		return errors.ExitSuccess
	}

	completed := err == nil || errors.IsKind(err, errors.KindTestFailure)
	if completed && s.report != "" {
		r := report.Build(report.Run{
			Task:    taskName,
			Started: started,
			Elapsed: elapsed,
			Filter:  s.flags.FilterTerms,
			Mode:    s.flags.Summary,
			Tally:   t.Tally(),
			Results: t.Results(),
		})
		if writeErr := report.Write(s.report, r); writeErr != nil {
			out.ErrorPrefix("%v", errors.Wrap(writeErr, "report"))
			if err == nil {
				return errors.ExitRuntimeError
			}
		} else {
			s.sink.Config("report written to %s", s.report)
		}
	}

	if err != nil {
		// The tally line already explains a failed run.
		if !errors.IsKind(err, errors.KindTestFailure) {
			out.ErrorPrefix("%v", err)
		}
		return errors.GetExitCode(err)
	}
	return errors.ExitSuccess
}

// classifyRunError converts a task error into a TaskError carrying its exit code.
// Any failure after ctx's deadline passed counts as a timeout, since a killed go
// command reports a signal rather than the context error.
func classifyRunError(ctx context.Context, err error) error {
	var taskErr *errors.TaskError
	switch {
	case err == nil:
		return nil
	case goerrors.As(err, &taskErr):
		return err
	case goerrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(taskName, err)
	case goerrors.Is(err, observer.ErrRunFailed):
		return errors.TestFailure(taskName, err)
	case goerrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Timeout(taskName, err)
	case goerrors.Is(err, exec.ErrNotFound):
		return errors.Environment("go toolchain unavailable", err)
	default:
		return errors.Wrap(err, taskName)
	}
}

