package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the variable that pins the data home.
const HomeEnv = "FORESIGHT_HOME"

// GetForesightHome returns the foresight data home directory
// Priority order:
//  1. FORESIGHT_HOME environment variable (if set)
//  2. The nearest ancestor holding a .foresight-root marker
//  3. .foresight under the current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetForesightHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create foresight home directory: %w", err)
		}
		return home, nil
	}

	base, err := findRoot()
	if err != nil {
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	home := filepath.Join(base, ".foresight")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create foresight home directory: %w", err)
	}
	return home, nil
}

// findRoot walks up from the working directory looking for a .foresight-root marker
func findRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".foresight-root")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("foresight root not found (looking for .foresight-root)")
}

// ConfigPath returns $FORESIGHT_HOME/config.yaml
func ConfigPath() (string, error) {
	home, err := GetForesightHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// ServeLockPath returns the lock file held while a server runs
func ServeLockPath() (string, error) {
	home, err := GetForesightHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "serve.lock"), nil
}

// ResolvePaths anchors relative log and metrics paths that still carry the
// default .foresight prefix at home, so every command agrees on file locations
// regardless of the working directory.
func (c *Config) ResolvePaths(home string) {
	defaults := DefaultConfig()
	if c.LogDir == defaults.LogDir {
		c.LogDir = filepath.Join(home, "logs")
	}
	if c.Metrics.DBPath == defaults.Metrics.DBPath {
		c.Metrics.DBPath = filepath.Join(home, "metrics.db")
	}
}
