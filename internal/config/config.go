// Package config provides configuration file parsing for depprune.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file, looked up at the
// project root.
const FileName = ".depprune.yaml"

// Project holds the per-project settings read from .depprune.yaml.
// All fields are optional; flags override them.
type Project struct {
	// Ignore adds glob patterns to the scanner's skip list.
	Ignore []string `yaml:"ignore"`

	// Safe lists dependency names that must never be reported unused.
	Safe []string `yaml:"safe"`

	// Protect extends the protection registry: category name to the
	// package names or prefix patterns it should cover.
	Protect map[string][]string `yaml:"protect"`

	// Workers caps the extraction pool. Zero means use the CPU count.
	Workers int `yaml:"workers"`

	// Aggressive disables registry protection, judging every dependency
	// on evidence alone.
	Aggressive bool `yaml:"aggressive"`
}

// Load reads the project config from root. A missing file returns an
// empty config without an error; a malformed one is fatal, since
// silently ignoring a safe list would break the promises it exists for.
func Load(root string) (*Project, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Project
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("parse %s: workers must not be negative", path)
	}
	return &cfg, nil
}

// Dir returns the depprune state directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/depprune if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "depprune"), nil
}

// CachePath returns the default location of the persistent usage cache.
func CachePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}
