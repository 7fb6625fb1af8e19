package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/testtask/internal/framework"
	"github.com/AndreyAkinshin/testtask/internal/summary"
	"github.com/AndreyAkinshin/testtask/internal/testing/mocks"
)

func sampleRun() Run {
	pass := mocks.Passing("pkg TestA").WithRunningTime(1500 * time.Millisecond).Resolve(framework.OutcomePass)
	fail := mocks.Failing("pkg TestB", "want 1, got 2").Resolve(framework.OutcomeFail)
	return Run{
		Task:    "test",
		Started: time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
		Elapsed: 2345678 * time.Microsecond,
		Filter:  []string{"pkg"},
		Mode:    summary.ModeFail,
		Tally:   summary.Tally{Passed: 1, Failed: 1},
		Results: []framework.Case{pass, fail},
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleRun())

	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", r.RunID, err)
	}
	want := Report{
		Task:     "test",
		Started:  time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		Duration: "2.346s",
		Filter:   []string{"pkg"},
		Summary:  "fail",
		Passed:   1,
		Failed:   1,
		Cases: []Case{
			{Description: "pkg TestA", Outcome: "pass", Seconds: 1.5},
			{Description: "pkg TestB", Outcome: "fail", Message: "want 1, got 2"},
		},
	}
	if diff := cmp.Diff(want, r, cmpopts.IgnoreFields(Report{}, "RunID")); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_UniqueRunIDs(t *testing.T) {
	if Build(Run{}).RunID == Build(Run{}).RunID {
		t.Error("two builds share a run ID")
	}
}

func TestBuild_NoResultsEncodesEmptyList(t *testing.T) {
	data, err := Encode("r.json", Build(Run{Task: "test"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"cases": []`) {
		t.Errorf("encoded report = %s", data)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		decode func([]byte, any) error
	}{
		{"json", "out/report.json", json.Unmarshal},
		{"yaml", "out/nested/report.yaml", yaml.Unmarshal},
		{"yml", "report.yml", yaml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			r := Build(sampleRun())

			if err := Write(path, r); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var got struct {
				RunID string `json:"run_id" yaml:"run_id"`
				Cases []struct {
					Description string `json:"description" yaml:"description"`
					Outcome     string `json:"outcome" yaml:"outcome"`
				} `json:"cases" yaml:"cases"`
			}
			if err := tt.decode(data, &got); err != nil {
				t.Fatalf("decode %s: %v\n%s", tt.name, err, data)
			}
			if got.RunID != r.RunID || len(got.Cases) != 2 || got.Cases[1].Outcome != "fail" {
				t.Errorf("decoded report = %+v", got)
			}
		})
	}
}
