package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetScoutHome returns the scout home directory
// Priority order:
//  1. SCOUT_HOME environment variable (if set)
//  2. $HOME/.scout
//  3. .scout in the current working directory (no home directory)
//
// The directory is created if it doesn't exist
func GetScoutHome() (string, error) {
	home := os.Getenv("SCOUT_HOME")

	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil || userHome == "" {
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return "", fmt.Errorf("get working directory: %w", cwdErr)
			}
			userHome = cwd
		}
		home = filepath.Join(userHome, ".scout")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create scout home directory: %w", err)
	}

	return home, nil
}

// GetHistoryDBPath returns the history database path for cfg.
// An explicit history.db_path wins; otherwise $SCOUT_HOME/history.db.
func GetHistoryDBPath(cfg *Config) (string, error) {
	if cfg != nil && cfg.History.DBPath != "" {
		return cfg.History.DBPath, nil
	}

	home, err := GetScoutHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "history.db"), nil
}
