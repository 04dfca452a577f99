package config

import (
	"os"
	"path/filepath"
)

// DefaultHomeDir returns the default GenAdvisor home directory.
// It uses ~/.genadvisor or falls back to a temporary directory if user home
// cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".genadvisor")
	}
	return filepath.Join(userHome, ".genadvisor")
}

// DefaultConfigPath returns the default config file path for a given home directory
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
