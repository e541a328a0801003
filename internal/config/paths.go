package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// BoardFile is the board document name inside a project directory.
	BoardFile = "board.json"
	// ProjectConfigFile is the per-repository config name.
	ProjectConfigFile = "config.json"
	// LogFile is the per-repository log name.
	LogFile = "vibedove.log"
)

// homeDir is a variable so tests can redirect all storage.
var homeDir = os.UserHomeDir

// RootDir returns the vibedove state directory. VIBEDOVE_HOME overrides
// the default ~/.vibedove.
func RootDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vibedove"), nil
}

// GlobalConfigPath returns the path of the global config file.
func GlobalConfigPath() (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "config.json"), nil
}

// ProjectsDir returns the directory holding one subdirectory per repository.
func ProjectsDir() (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "projects"), nil
}

// ProjectDir returns the storage directory for the repository at repoRoot.
func ProjectDir(repoRoot string) (string, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SanitizeKey(repoRoot)), nil
}

// ProjectFile returns the path of name inside the repository's storage directory.
func ProjectFile(repoRoot, name string) (string, error) {
	dir, err := ProjectDir(repoRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// LogPath returns the log file for repoRoot, or the shared log in the state
// directory when repoRoot is empty.
func LogPath(repoRoot string) (string, error) {
	if repoRoot == "" {
		root, err := RootDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(root, LogFile), nil
	}
	return ProjectFile(repoRoot, LogFile)
}

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// SanitizeKey turns an absolute path into a single directory name by
// replacing separators and colons with underscores.
func SanitizeKey(p string) string {
	return keyReplacer.Replace(p)
}
