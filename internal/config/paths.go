package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigDir returns the default ledmatrix config directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultConfigDirName
	}
	return filepath.Join(home, ".config", DefaultConfigDirName)
}

// DefaultConfigPath returns the default ledmatrix config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), DefaultConfigFileName)
}
