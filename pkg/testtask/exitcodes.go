// Package testtask provides public constants for tools that invoke the testtask CLI.
package testtask

// Exit codes returned by the testtask CLI.
// These constants allow wrapper scripts and CI tooling to check exit codes
// symbolically rather than using magic numbers.
const (
	// ExitSuccess indicates every executed test passed.
	ExitSuccess = 0

	// ExitFailure indicates a failed test run or a runtime failure.
	ExitFailure = 1

	// ExitConfigError indicates a configuration or usage error (invalid config, bad flag, etc.).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (go toolchain unavailable, etc.).
	ExitEnvError = 3

	// ExitTimeout indicates the test run did not complete within the timeout.
	ExitTimeout = 4
)
