package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gate.Mode != "strict" {
		t.Errorf("expected Mode=strict, got %q", cfg.Gate.Mode)
	}
	if len(cfg.Gate.InterruptBeforeTools) != 1 || cfg.Gate.InterruptBeforeTools[0] != "exec" {
		t.Errorf("expected exec gated by default, got %v", cfg.Gate.InterruptBeforeTools)
	}
	if cfg.Tools.Exec.Timeout != 60 {
		t.Errorf("expected exec Timeout=60, got %d", cfg.Tools.Exec.Timeout)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("expected text log format, got %q", cfg.Log.Format)
	}
	if cfg.Gate.TimeoutDuration() != 0 {
		t.Errorf("expected no decision timeout by default, got %s", cfg.Gate.TimeoutDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
  "log": {"level": "DEBUG", "format": " JSON "},
  "gate": {
    "interrupt_before_tools": ["delete_file", "send_email"],
    "approval_keywords": ["ship it"],
    "timeout": 30,
    "pending_ttl": 300
  },
  "tools": {"exec": {"working_dir": "/tmp"}}
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected normalized level debug, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected normalized format json, got %q", cfg.Log.Format)
	}
	if strings.Join(cfg.Gate.InterruptBeforeTools, ",") != "delete_file,send_email" {
		t.Fatalf("unexpected interrupt list: %v", cfg.Gate.InterruptBeforeTools)
	}
	if len(cfg.Gate.ApprovalKeywords) != 1 || cfg.Gate.ApprovalKeywords[0] != "ship it" {
		t.Fatalf("unexpected keywords: %v", cfg.Gate.ApprovalKeywords)
	}
	if cfg.Gate.TimeoutDuration() != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Gate.TimeoutDuration())
	}
	if cfg.Gate.PendingTTLDuration() != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.Gate.PendingTTLDuration())
	}
	if cfg.Gate.Mode != "strict" {
		t.Fatalf("expected default mode kept, got %q", cfg.Gate.Mode)
	}
	if cfg.Tools.Exec.WorkingDir != "/tmp" || cfg.ExecTimeout() != time.Minute {
		t.Fatalf("unexpected exec config: %+v", cfg.Tools.Exec)
	}
}

func TestLoadFile_CamelCaseKeys(t *testing.T) {
	path := writeConfig(t, `{"gate": {"interruptBeforeTools": ["deploy"]}}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(cfg.Gate.InterruptBeforeTools) != 1 || cfg.Gate.InterruptBeforeTools[0] != "deploy" {
		t.Fatalf("expected camelCase key to decode, got %v", cfg.Gate.InterruptBeforeTools)
	}
}

func TestLoadFile_RejectsInvalidValues(t *testing.T) {
	cases := []string{
		`{"log": {"level": "verbose"}}`,
		`{"log": {"format": "xml"}}`,
		`{"gate": {"mode": "relaxed"}}`,
		`{"gate": {"timeout": -1}}`,
		`{"gate": {"pending_ttl": -5}}`,
		`{"tools": {"exec": {"timeout": -2}}}`,
	}
	for _, body := range cases {
		if _, err := LoadFile(writeConfig(t, body)); err == nil {
			t.Fatalf("expected validation error for %s", body)
		}
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_NormalizesMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gate.Mode = " OFF "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if cfg.Gate.Mode != "off" {
		t.Fatalf("expected mode off, got %q", cfg.Gate.Mode)
	}

	cfg.Gate.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if cfg.Gate.Mode != "strict" {
		t.Fatalf("expected empty mode to default to strict, got %q", cfg.Gate.Mode)
	}
}

func TestSave_RoundTripsThroughLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Gate.InterruptBeforeTools = []string{"transfer_funds"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(loaded.Gate.InterruptBeforeTools) != 1 || loaded.Gate.InterruptBeforeTools[0] != "transfer_funds" {
		t.Fatalf("unexpected interrupt list after reload: %v", loaded.Gate.InterruptBeforeTools)
	}
}
