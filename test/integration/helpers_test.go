// Package integration contains integration tests for testtask.
package integration

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/gotest"
	"github.com/AndreyAkinshin/testtask/internal/task"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
// The result is cached for efficiency since runtime.Caller is relatively expensive.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// requireGo skips tests that shell out to the go toolchain.
func requireGo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping go toolchain test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
}

// sampleRunner runs go in the sample fixture module, isolated from any workspace.
func sampleRunner() gotest.ExecRunner {
	return gotest.ExecRunner{Env: []string{"GOWORK=off", "GOTOOLCHAIN=local", "GOFLAGS="}}
}

// runSample runs the test task over the sample fixture module.
func runSample(t *testing.T, sink diag.Sink, flags task.Flags) (*task.Task, error) {
	t.Helper()
	fw := gotest.New(gotest.Options{
		Dir:    filepath.Join(fixturesDir(), "sample"),
		Runner: sampleRunner(),
	})
	tk := &task.Task{Framework: fw, Sink: sink, Setup: fw.Discover}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	return tk, tk.Run(ctx, flags)
}
