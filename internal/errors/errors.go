// Package errors classifies testtask failures and maps them to exit codes.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the testtask CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Test run failed, or a runtime error
	ExitConfigError      = 2 // Configuration or usage error
	ExitEnvironmentError = 3 // Environment error (go toolchain missing, etc.)
	ExitTimeout          = 4 // The run did not complete within the timeout
)

// ErrorKind says which exit code a TaskError maps to.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindEnvironment
	KindTestFailure
	KindTimeout
)

var kindNames = [...]string{"runtime", "config", "environment", "test failure", "timeout"}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// TaskError is a failure of the named task (or of the CLI itself when Task is empty).
type TaskError struct {
	Kind    ErrorKind
	Task    string
	Message string
	Cause   error
}

func (e *TaskError) Error() string {
	msg := e.Message
	if e.Task != "" {
		msg = "[" + e.Task + "] " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TaskError) Unwrap() error { return e.Cause }

// ExitCode returns the process exit code for e.
func (e *TaskError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	case KindTimeout:
		return ExitTimeout
	default:
		return ExitRuntimeError
	}
}

// Wrap attaches context to a runtime error.
func Wrap(err error, message string) *TaskError {
	return &TaskError{Kind: KindRuntime, Message: message, Cause: err}
}

// Config reports an invalid flag or project file.
func Config(message string, cause error) *TaskError {
	return &TaskError{Kind: KindConfig, Message: message, Cause: cause}
}

// Environment reports something missing from the host, such as the go toolchain.
func Environment(message string, cause error) *TaskError {
	return &TaskError{Kind: KindEnvironment, Message: message, Cause: cause}
}

// TestFailure reports a run that completed with failures or errors.
func TestFailure(task string, cause error) *TaskError {
	return &TaskError{Kind: KindTestFailure, Task: task, Message: "tests failed", Cause: cause}
}

// Timeout reports a run whose completion signal did not resolve in time.
func Timeout(task string, cause error) *TaskError {
	return &TaskError{Kind: KindTimeout, Task: task, Message: "timed out waiting for the test run", Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is a TaskError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var te *TaskError
	return errors.As(err, &te) && te.Kind == k
}

// GetExitCode returns the exit code for err; nil is success and
// unclassified errors are runtime errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.ExitCode()
	}
	return ExitRuntimeError
}
