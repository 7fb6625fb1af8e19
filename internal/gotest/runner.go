package gotest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes go toolchain commands.
type Runner interface {
	// Output runs go with args in dir and returns its stdout.
	Output(ctx context.Context, dir string, args ...string) ([]byte, error)
	// Stream runs go with args in dir, writing stdout and stderr to w.
	Stream(ctx context.Context, dir string, w io.Writer, args ...string) error
}

// ExecRunner runs the go binary via os/exec.
type ExecRunner struct {
	// GoBin is the go executable; defaults to "go" on PATH.
	GoBin string
	// Env is appended to the inherited environment.
	Env []string
}

func (r ExecRunner) bin() string {
	if r.GoBin == "" {
		return "go"
	}
	return r.GoBin
}

// Check verifies that the go executable can be found.
func (r ExecRunner) Check() error {
	if _, err := exec.LookPath(r.bin()); err != nil {
		return fmt.Errorf("go toolchain not found: %w", err)
	}
	return nil
}

func (r ExecRunner) command(ctx context.Context, dir string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.bin(), args...)
	cmd.Dir = dir
	// Pass through environment
	cmd.Env = append(os.Environ(), r.Env...)
	return cmd
}

func (r ExecRunner) Output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, dir, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("go %s failed: %w (stderr: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (r ExecRunner) Stream(ctx context.Context, dir string, w io.Writer, args ...string) error {
	cmd := r.command(ctx, dir, args)
	// Same writer for both streams: exec serializes writes.
	cmd.Stdout = w
	cmd.Stderr = w
	return cmd.Run()
}

// isExitError reports whether err only reflects a non-zero exit status.
// go test exits non-zero whenever a test fails; the event stream carries the details.
func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
