package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected default config version, got %d", cfg.ConfigVersion)
	}
	if len(cfg.Providers) == 0 {
		t.Fatalf("expected default providers")
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 99
providers:
  - name: ollama
    kind: ollama
    model: llama3.2
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsUnknownProviderKind(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
service:
  default_provider: weird
providers:
  - name: weird
    kind: telepathy
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported kind") {
		t.Fatalf("expected kind error, got %v", err)
	}
}

func TestLoadRejectsExecProviderWithoutCommand(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
service:
  default_provider: cli
providers:
  - name: cli
    kind: exec
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "command is required") {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestLoadRejectsUnknownDefaultProvider(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
service:
  default_provider: ghost
providers:
  - name: ollama
    kind: ollama
    model: llama3.2
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "default_provider") {
		t.Fatalf("expected default provider error, got %v", err)
	}
}

func TestLoadOverridesServiceSection(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
service:
  max_concurrent: 5
  conflict_window_seconds: 60
  default_provider: ollama
providers:
  - name: ollama
    kind: ollama
    model: llama3.2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	settings := cfg.ServiceSettings()
	if settings.MaxConcurrent != 5 {
		t.Fatalf("expected max concurrent 5, got %d", settings.MaxConcurrent)
	}
	if settings.ConflictWindow.Seconds() != 60 {
		t.Fatalf("expected 60s window, got %v", settings.ConflictWindow)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("expected written default to load: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
