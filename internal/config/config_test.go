package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
)

func setupTestConfig(t *testing.T) (string, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	origFunc := configDirFunc
	configDirFunc = func() (string, error) {
		return tmpDir, nil
	}
	return tmpDir, func() {
		configDirFunc = origFunc
	}
}

func TestLoad_MissingDefaultConfig(t *testing.T) {
	_, cleanup := setupTestConfig(t)
	defer cleanup()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	th, err := cfg.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds failed: %v", err)
	}
	if th != analyzer.DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want defaults", th)
	}
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "index_policy: strict\nnested_loop_max_rows: 500\nrow_estimate_high: 10\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	th, err := cfg.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds failed: %v", err)
	}
	if th.IndexPolicy != analyzer.StrictIndexPolicy {
		t.Errorf("IndexPolicy = %+v, want strict", th.IndexPolicy)
	}
	if th.NestedLoopMaxRows != 500 {
		t.Errorf("NestedLoopMaxRows = %d, want 500", th.NestedLoopMaxRows)
	}
	if th.RowEstimateHigh != 10 {
		t.Errorf("RowEstimateHigh = %f, want 10", th.RowEstimateHigh)
	}
	if th.RowEstimateLow != analyzer.RowEstimateLowRatio {
		t.Errorf("RowEstimateLow = %f, want default", th.RowEstimateLow)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("index_policy: [unterminated"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestThresholds_UnknownPolicy(t *testing.T) {
	cfg := &Config{IndexPolicy: "aggressive"}
	if _, err := cfg.Thresholds(); err == nil {
		t.Fatal("expected error for unknown index policy")
	}
}

func TestInit_WritesTemplate(t *testing.T) {
	dir, cleanup := setupTestConfig(t)
	defer cleanup()

	path, err := Init(false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if path != filepath.Join(dir, configFileName) {
		t.Errorf("path = %q, want file in %q", path, dir)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	th, err := cfg.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds failed: %v", err)
	}
	if th != analyzer.DefaultThresholds() {
		t.Errorf("template thresholds = %+v, want defaults", th)
	}
}

func TestInit_RefusesOverwrite(t *testing.T) {
	_, cleanup := setupTestConfig(t)
	defer cleanup()

	path, err := Init(false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("index_policy: strict\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Init(false); err == nil {
		t.Fatal("expected error when config exists")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "index_policy: strict\n" {
		t.Error("existing config was overwritten")
	}

	if _, err := Init(true); err != nil {
		t.Fatalf("Init with force failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "index_policy: lenient") {
		t.Error("expected template after forced init")
	}
}
