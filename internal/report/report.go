// Package report writes a machine-readable record of a test run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// Report is the serialized form of one run.
type Report struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	Task     string    `json:"task" yaml:"task"`
	Started  time.Time `json:"started" yaml:"started"`
	Duration string    `json:"duration" yaml:"duration"`
	Filter   []string  `json:"filter,omitempty" yaml:"filter,omitempty"`
	Summary  string    `json:"summary_mode" yaml:"summary_mode"`
	Success  bool      `json:"success" yaml:"success"`
	Passed   int       `json:"passed" yaml:"passed"`
	Failed   int       `json:"failed" yaml:"failed"`
	Errors   int       `json:"errors" yaml:"errors"`
	Uncaught string    `json:"uncaught,omitempty" yaml:"uncaught,omitempty"`
	Cases    []Case    `json:"cases" yaml:"cases"`
}

// Case is one executed test case.
type Case struct {
	Description string  `json:"description" yaml:"description"`
	Outcome     string  `json:"outcome" yaml:"outcome"`
	Message     string  `json:"message,omitempty" yaml:"message,omitempty"`
	StackTrace  string  `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
	Seconds     float64 `json:"seconds" yaml:"seconds"`
}

// Run describes the run a report is built from.
type Run struct {
	Task    string
	Started time.Time
	Elapsed time.Duration
	Filter  []string
	Mode    summary.Mode
	Tally   summary.Tally
	Results []framework.Case
}

// Build assembles a report with a fresh run ID.
func Build(run Run) Report {
	r := Report{
		RunID:    uuid.NewString(),
		Task:     run.Task,
		Started:  run.Started.UTC(),
		Duration: run.Elapsed.Round(time.Millisecond).String(),
		Filter:   run.Filter,
		Summary:  run.Mode.String(),
		Success:  run.Tally.Success,
		Passed:   run.Tally.Passed,
		Failed:   run.Tally.Failed,
		Errors:   run.Tally.Errors,
		Uncaught: run.Tally.Uncaught,
		Cases:    make([]Case, 0, len(run.Results)),
	}
	for _, c := range run.Results {
		r.Cases = append(r.Cases, Case{
			Description: c.Description(),
			Outcome:     c.Outcome().String(),
			Message:     c.Message(),
			StackTrace:  c.StackTrace(),
			Seconds:     c.RunningTime().Seconds(),
		})
	}
	return r
}

// Encode renders r as YAML for .yaml/.yml paths and as indented JSON otherwise.
func Encode(path string, r Report) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(r)
	default:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Write encodes r and writes it to path, creating parent directories.
func Write(path string, r Report) error {
	data, err := Encode(path, r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
