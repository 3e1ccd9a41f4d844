// ABOUTME: Standard filesystem paths for medsupport configuration and data
// ABOUTME: Resolves ~/.medsupport/ for global files and medsupport.yaml in the project root

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName   = ".medsupport"
	projectFileName = "medsupport.yaml"
)

// GlobalDir returns the user-global config directory (~/.medsupport/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, projectFileName)
}

// EnsureDir creates a directory and all parents if they don't exist.
// Uses 0o700 since the directory holds the chat log database.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
