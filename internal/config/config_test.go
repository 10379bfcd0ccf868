package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting cwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("changing dir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restoring cwd: %v", err)
		}
	})

	cfg, err := Load(DefaultFileName)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected default workers 4, got %d", cfg.Workers)
	}
	if cfg.CacheDir != "cache" {
		t.Errorf("Expected default cache dir, got %q", cfg.CacheDir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected explicit missing config to fail")
	}
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env-composer-test.yml")
	content := "workers: 8\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Expected workers 8, got %d", cfg.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Logging.Level)
	}
	// Unset fields fall back to defaults.
	if cfg.CacheDir != "cache" {
		t.Errorf("Expected cache dir backfilled, got %q", cfg.CacheDir)
	}

	helpers := NewConfigHelpers(cfg)
	if !helpers.IsDebugMode() {
		t.Error("Expected debug mode")
	}
	if helpers.Workers() != 8 {
		t.Errorf("Expected helpers workers 8, got %d", helpers.Workers())
	}
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("workers: [not a number"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected malformed config to fail")
	}
}

func TestLoadNormalizesInvalidWorkerCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yml")
	if err := os.WriteFile(path, []byte("workers: -2\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected workers normalized to 4, got %d", cfg.Workers)
	}
}
