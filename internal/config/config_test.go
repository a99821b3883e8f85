package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upshot.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
db:
  path: /tmp/upshot-test.db
log:
  level: debug
  format: json
engine:
  use_rounded_training_start_date: false
  positions:
    pilot:
      deadlines:
        "200": {target_months: 4, deadline_months: 8}
    nfo:
      use_derived_levels: false
matcher:
  threshold: 0.95
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/upshot-test.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Engine.Concurrency != 4 {
		t.Errorf("Engine.Concurrency = %d, want default 4", cfg.Engine.Concurrency)
	}

	engine := cfg.ToEngineConfig()
	if engine.UseRoundedTrainingStartDate {
		t.Error("UseRoundedTrainingStartDate = true, want false")
	}
	pilot, ok := engine.ForPosition("PILOT")
	if !ok {
		t.Fatal("PILOT not configured")
	}
	if !pilot.UseDerivedLevels {
		t.Error("PILOT UseDerivedLevels should default to true")
	}
	if got := pilot.Deadlines[200]; got != (models.Curve{TargetMonths: 4, DeadlineMonths: 8}) {
		t.Errorf("PILOT 200 curve = %+v", got)
	}
	if engine.UseDerivedLevels("NFO") {
		t.Error("NFO UseDerivedLevels = true, want false")
	}

	opts := cfg.MatcherOptions()
	if opts.Threshold != 0.95 {
		t.Errorf("Threshold = %v, want 0.95", opts.Threshold)
	}
	if opts.MaxPrefix != names.DefaultOptions().MaxPrefix {
		t.Errorf("MaxPrefix = %d, want default", opts.MaxPrefix)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
	if !cfg.Engine.UseRoundedTrainingStartDate {
		t.Error("rounding should default to enabled")
	}
	if got := cfg.MatcherOptions(); got != names.DefaultOptions() {
		t.Errorf("MatcherOptions = %+v, want defaults", got)
	}
	if !reflect.DeepEqual(cfg.ToEngineConfig().Positions, DefaultPositions()) {
		t.Error("expected default positions without configuration")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("UPSHOT_LOG_LEVEL", "warn")
	t.Setenv("UPSHOT_DB_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q, want /tmp/env.db", cfg.Database.Path)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log format", "log:\n  format: xml\n"},
		{"threshold above one", "matcher:\n  threshold: 1.5\n"},
		{"zero concurrency", "engine:\n  concurrency: 0\n"},
		{"target after deadline", "engine:\n  positions:\n    pilot:\n      deadlines:\n        \"200\": {target_months: 12, deadline_months: 6}\n"},
		{"non numeric level", "engine:\n  positions:\n    pilot:\n      deadlines:\n        first: {target_months: 1, deadline_months: 2}\n"},
		{"off scale level", "engine:\n  positions:\n    pilot:\n      deadlines:\n        \"250\": {target_months: 1, deadline_months: 2}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestDefaultFileRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, DefaultFile()))
	if err != nil {
		t.Fatalf("Load(DefaultFile) failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.ToEngineConfig().Positions, DefaultPositions()) {
		t.Errorf("positions = %+v, want defaults", cfg.ToEngineConfig().Positions)
	}
	if got := cfg.MatcherOptions(); got != names.DefaultOptions() {
		t.Errorf("MatcherOptions = %+v, want defaults", got)
	}
}
