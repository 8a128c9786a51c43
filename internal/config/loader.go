package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load merges the global config and then the project config over the
// defaults. Missing files are skipped.
func Load() (*Config, error) {
	return LoadFiles(GlobalConfigPath(), ProjectConfigPath())
}

// LoadFiles merges the given files over the defaults, later files winning.
func LoadFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := loadFile(p, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, fmt.Errorf("load config %s: %w", p, err)
		}
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// GlobalDir returns the per-user tasks directory
func GlobalDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tasks")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".tasks", "config.yaml")
}
