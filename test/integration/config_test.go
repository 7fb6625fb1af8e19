package integration

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AndreyAkinshin/testtask/internal/config"
)

func TestConfigDiscoveredFromNestedDir(t *testing.T) {
	t.Parallel()
	root := filepath.Join(fixturesDir(), "configured")

	cfg, warnings, err := config.Discover(filepath.Join(root, "nested", "deeper"))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}

	if cfg.Path != filepath.Join(root, "testtask.yaml") {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Dir != root {
		t.Errorf("Dir = %q, want the config directory %q", cfg.Dir, root)
	}
	if diff := cmp.Diff([]string{"./mathx/..."}, cfg.Packages); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}
	if cfg.Summary != "fail" || cfg.TimeoutDuration() != 90*time.Second || cfg.Log.Level != "warning" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigValidateInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(fixturesDir(), "invalid", "testtask.json")

	_, _, err := config.LoadAndValidate(path)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("error = %q, want schema validation failure", err.Error())
	}
}

func TestConfigFileMissingError(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "testtask.json"))
	if err == nil {
		t.Error("expected error when loading missing config file")
	}
}
