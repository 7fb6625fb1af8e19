// Package gotest drives `go test -json` as a test framework.
//
// Discovery lists test functions per package with `go test -list`, execution runs the
// eligible ones with an anchored -run pattern, and the resulting event stream is turned
// into lifecycle callbacks. Replay does the same for a recorded stream.
package gotest

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/testparser"
)

// DefaultPackages is the package pattern used when none is configured.
var DefaultPackages = []string{"./..."}

// testNamePattern matches the names go test -list prints for runnable functions.
var testNamePattern = regexp.MustCompile(`^(Test|Example|Fuzz)[\p{L}\p{N}_]*$`)

// Options configure a Framework.
type Options struct {
	// Dir is the working directory for go commands.
	Dir string
	// Packages are the package patterns to test. Defaults to DefaultPackages.
	Packages []string
	// GoFlags are extra flags passed to go test, such as -race or -tags.
	GoFlags []string
	// Runner executes go commands. Defaults to ExecRunner.
	Runner Runner
	// Parallelism bounds concurrent discovery. Defaults to GOMAXPROCS.
	Parallelism int
}

// Framework implements framework.Framework on top of the go toolchain.
type Framework struct {
	registry
	opts Options
}

var _ framework.Framework = (*Framework)(nil)

// New creates a Framework. Call Discover to register cases before listing or starting.
func New(opts Options) *Framework {
	if len(opts.Packages) == 0 {
		opts.Packages = DefaultPackages
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &Framework{opts: opts}
}

// Discover resolves the configured packages and registers their test functions.
// Packages are listed concurrently; registration order follows package order.
func (f *Framework) Discover(ctx context.Context) error {
	pkgs, err := f.packages(ctx)
	if err != nil {
		return err
	}

	names := make([][]string, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Parallelism)
	for i, pkg := range pkgs {
		g.Go(func() error {
			list, err := f.listTests(gctx, pkg)
			if err != nil {
				return err
			}
			names[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, pkg := range pkgs {
		for _, name := range names[i] {
			f.add(pkg, name)
		}
	}
	return nil
}

func (f *Framework) packages(ctx context.Context) ([]string, error) {
	args := append([]string{"list"}, buildFlags(f.opts.GoFlags)...)
	args = append(args, f.opts.Packages...)
	out, err := f.opts.Runner.Output(ctx, f.opts.Dir, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve packages: %w", err)
	}

	var pkgs []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pkgs = append(pkgs, line)
		}
	}
	return pkgs, nil
}

// Build flags go list understands. Those in buildValueFlags take a value,
// either inline (-tags=x) or as the next argument.
var (
	buildBoolFlags  = []string{"race", "msan", "asan", "cover", "trimpath", "buildvcs"}
	buildValueFlags = []string{"tags", "mod", "modfile", "overlay", "gcflags", "ldflags", "asmflags", "pgo", "covermode", "coverpkg"}
)

// buildFlags keeps the build flags from goFlags, so go list resolves
// packages under the same build constraints go test will use. Test-only
// flags such as -count or -v are dropped.
func buildFlags(goFlags []string) []string {
	var kept []string
	for i := 0; i < len(goFlags); i++ {
		flag := goFlags[i]
		name, _, inline := strings.Cut(strings.TrimLeft(flag, "-"), "=")
		switch {
		case !strings.HasPrefix(flag, "-"):
		case slices.Contains(buildBoolFlags, name):
			kept = append(kept, flag)
		case slices.Contains(buildValueFlags, name):
			kept = append(kept, flag)
			if !inline && i+1 < len(goFlags) {
				i++
				kept = append(kept, goFlags[i])
			}
		}
	}
	return kept
}

func (f *Framework) listTests(ctx context.Context, pkg string) ([]string, error) {
	args := []string{"test", "-json", "-list", "."}
	args = append(args, f.opts.GoFlags...)
	args = append(args, pkg)

	out, err := f.opts.Runner.Output(ctx, f.opts.Dir, args...)
	if err != nil {
		return nil, fmt.Errorf("list tests in %s: %w", pkg, err)
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		event, ok := testparser.DecodeEvent([]byte(line))
		if !ok || event.Action != testparser.ActionOutput || event.Test != "" {
			continue
		}
		if name := strings.TrimSpace(event.Output); testNamePattern.MatchString(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Start runs the eligible cases package by package on a new goroutine.
func (f *Framework) Start(ctx context.Context) {
	go f.run(ctx)
}

func (f *Framework) run(ctx context.Context) {
	f.observer.OnStart()
	stream := NewStream(f.observer, f.lookup)

	for _, batch := range batchByPackage(f.eligible()) {
		if err := ctx.Err(); err != nil {
			stream.Uncaught(fmt.Sprintf("run interrupted: %v", err))
			break
		}
		f.runPackage(ctx, stream, batch)
	}

	stream.Finish()
}

func (f *Framework) runPackage(ctx context.Context, stream *Stream, batch packageBatch) {
	args := []string{"test", "-json"}
	args = append(args, f.opts.GoFlags...)
	args = append(args, "-run", RunPattern(batch.names), batch.pkg)

	pr, pw := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		err := f.opts.Runner.Stream(ctx, f.opts.Dir, pw, args...)
		_ = pw.Close()
		errc <- err
	}()

	stream.Consume(pr)

	if err := <-errc; err != nil && !isExitError(err) {
		stream.Uncaught(fmt.Sprintf("go test %s: %v", batch.pkg, err))
	}
}

// RunPattern builds an anchored -run pattern selecting exactly names.
func RunPattern(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

type packageBatch struct {
	pkg   string
	names []string
}

// batchByPackage groups cases by package, keeping first-seen package order.
func batchByPackage(cases []*Case) []packageBatch {
	var batches []packageBatch
	index := make(map[string]int)
	for _, c := range cases {
		i, ok := index[c.pkg]
		if !ok {
			i = len(batches)
			index[c.pkg] = i
			batches = append(batches, packageBatch{pkg: c.pkg})
		}
		batches[i].names = append(batches[i].names, c.name)
	}
	return batches
}
