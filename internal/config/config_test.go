package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.RetryTimeout() != 1800*time.Millisecond {
		t.Fatalf("RetryTimeout = %v, want 1.8s", cfg.RetryTimeout())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"log_level": "debug", "retry_timeout_ms": 500}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.RetryTimeoutMS != 500 {
		t.Fatalf("RetryTimeoutMS = %d, want 500", cfg.RetryTimeoutMS)
	}
	// Untouched fields keep their defaults.
	if cfg.APITimeoutMS != 15000 {
		t.Fatalf("APITimeoutMS = %d, want default 15000", cfg.APITimeoutMS)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"log_level": "debug"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("GJIRA_LOG_LEVEL", "warn")
	t.Setenv("GJIRA_RETRY_TIMEOUT", "2500ms")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want env override %q", cfg.LogLevel, "warn")
	}
	if cfg.RetryTimeoutMS != 2500 {
		t.Fatalf("RetryTimeoutMS = %d, want 2500", cfg.RetryTimeoutMS)
	}
}

func TestLoad_MalformedEnvDurationIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("GJIRA_FETCH_TIMEOUT", "soon")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FetchTimeoutMS != 10000 {
		t.Fatalf("FetchTimeoutMS = %d, want default 10000", cfg.FetchTimeoutMS)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["jira_link", "jira_comment"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "jira_link" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "jira_link")
	}
}

func TestMerge_OverlayWinsScalars(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{LogLevel: "trace", WebAddr: "0.0.0.0:9000"}

	got := Merge(base, overlay)

	if got.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want overlay %q", got.LogLevel, "trace")
	}
	if got.WebAddr != "0.0.0.0:9000" {
		t.Errorf("WebAddr = %q, want overlay value", got.WebAddr)
	}
	if got.FetchTimeoutMS != base.FetchTimeoutMS {
		t.Errorf("FetchTimeoutMS = %d, want base %d", got.FetchTimeoutMS, base.FetchTimeoutMS)
	}
}

func TestMerge_DeduplicatesTools(t *testing.T) {
	got := Merge(
		&Config{DisabledTools: []string{"jira_link", " jira_comment "}},
		&Config{DisabledTools: []string{"jira_link", ""}},
	)

	if len(got.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 deduplicated entries", got.DisabledTools)
	}
}

func TestBaseDir_EnvOverride(t *testing.T) {
	t.Setenv("GJIRA_HOME", "/tmp/gjira-test")

	dir, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if dir != "/tmp/gjira-test" {
		t.Fatalf("BaseDir = %q, want env value", dir)
	}
}
