package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  "1",
		LogLevel: "warn",
		Storage: StorageConfig{
			Backend: "file",
			Key:     "tarefas",
		},
		Search: SearchConfig{
			MinLength: 3,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// StoragePath returns the configured slot path, or the default one for
// the backend under the global tasks directory.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	name := "tasks.json"
	if c.Storage.Backend == "sqlite" {
		name = "tasks.db"
	}
	return filepath.Join(GlobalDir(), name)
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// WriteDefault writes a commented default configuration to path
func WriteDefault(path string) error {
	content := `# tasks configuration
version: "1"

# debug, info, warn, error
log_level: warn

storage:
  # file, sqlite or memory
  backend: file
  # defaults to ~/.tasks/tasks.json (file) or ~/.tasks/tasks.db (sqlite)
  path: ""
  key: tarefas

search:
  # shorter search terms show every task
  min_length: 3

serve:
  addr: ":8080"
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
