package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Storage.Backend != "file" {
		t.Errorf("Expected file backend, got '%s'", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != "tarefas" {
		t.Errorf("Expected key 'tarefas', got '%s'", cfg.Storage.Key)
	}
	if cfg.Search.MinLength != 3 {
		t.Errorf("Expected min search length 3, got %d", cfg.Search.MinLength)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Expected addr ':8080', got '%s'", cfg.Serve.Addr)
	}
}

func TestLoadFiles_MissingFilesKeepDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := LoadFiles(filepath.Join(dir, "nope.yaml"), "")
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if cfg.Storage.Backend != "file" || cfg.Search.MinLength != 3 {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadFiles_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")

	writeFile(t, global, `
log_level: info
storage:
  backend: sqlite
  path: /tmp/global.db
search:
  min_length: 4
`)
	writeFile(t, project, `
storage:
  path: /tmp/project.db
`)

	cfg, err := LoadFiles(global, project)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level from global, got '%s'", cfg.LogLevel)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Expected backend from global, got '%s'", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "/tmp/project.db" {
		t.Errorf("Expected path from project, got '%s'", cfg.Storage.Path)
	}
	if cfg.Search.MinLength != 4 {
		t.Errorf("Expected min length 4, got %d", cfg.Search.MinLength)
	}
	if cfg.Storage.Key != "tarefas" {
		t.Errorf("Expected default key to survive merge, got '%s'", cfg.Storage.Key)
	}
}

func TestLoadFiles_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "storage: [unterminated\n")

	if _, err := LoadFiles(path); err == nil {
		t.Fatal("Expected error for invalid yaml")
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := LoadFiles(path)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	want := DefaultConfig()
	got, _ := yaml.Marshal(cfg)
	exp, _ := yaml.Marshal(want)
	if string(got) != string(exp) {
		t.Errorf("Expected written defaults to match DefaultConfig\n got: %s\nwant: %s", got, exp)
	}
}

func TestStoragePath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if !strings.HasSuffix(cfg.StoragePath(), filepath.Join(".tasks", "tasks.json")) {
		t.Errorf("Unexpected default file path %s", cfg.StoragePath())
	}

	cfg.Storage.Backend = "sqlite"
	if !strings.HasSuffix(cfg.StoragePath(), filepath.Join(".tasks", "tasks.db")) {
		t.Errorf("Unexpected default sqlite path %s", cfg.StoragePath())
	}

	cfg.Storage.Path = "/var/lib/tasks.db"
	if cfg.StoragePath() != "/var/lib/tasks.db" {
		t.Errorf("Expected explicit path, got %s", cfg.StoragePath())
	}

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.Storage.Path = "~/x/tasks.json"
		if cfg.StoragePath() != filepath.Join(home, "x", "tasks.json") {
			t.Errorf("Expected ~ expansion, got %s", cfg.StoragePath())
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"debug":   "DEBUG",
		" INFO ":  "INFO",
		"error":   "ERROR",
		"":        "WARN",
		"verbose": "WARN",
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		if got := cfg.Level().String(); got != want {
			t.Errorf("Level(%q): expected %s, got %s", in, want, got)
		}
	}
}
