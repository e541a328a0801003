package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectConfig holds per-repository settings stored next to the board.
type ProjectConfig struct {
	// SetupScript is run with the shell inside each new worktree.
	SetupScript string `json:"setupScript"`
	// CopyFiles are repository-relative paths or globs copied into new worktrees.
	CopyFiles FileList `json:"copyFiles"`
}

// FileList decodes from either a JSON array of strings or a single string of
// whitespace-separated entries. Blank entries are dropped.
type FileList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *FileList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out []string
	switch v := raw.(type) {
	case nil:
	case string:
		out = strings.Fields(v)
	case []any:
		for _, item := range v {
			s := strings.TrimSpace(fmt.Sprint(item))
			if item == nil || s == "" {
				continue
			}
			out = append(out, s)
		}
	default:
		// unsupported shapes are treated as empty
	}

	*l = out
	return nil
}

// MarshalJSON always writes an array.
func (l FileList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// projectFile mirrors ProjectConfig but lets setupScript be null.
type projectFile struct {
	SetupScript *string  `json:"setupScript"`
	CopyFiles   FileList `json:"copyFiles"`
}

// DefaultProjectConfig returns the empty project config.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{CopyFiles: FileList{}}
}

// LoadProject reads the project config at path. A missing or invalid file
// yields the empty defaults.
func LoadProject(path string) *ProjectConfig {
	cfg, err := LoadProjectStrict(path)
	if err != nil {
		return DefaultProjectConfig()
	}
	return cfg
}

// LoadProjectStrict reads the project config at path and surfaces read and
// parse errors.
func LoadProjectStrict(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw projectFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := DefaultProjectConfig()
	if raw.SetupScript != nil {
		cfg.SetupScript = strings.TrimSpace(*raw.SetupScript)
	}
	if raw.CopyFiles != nil {
		cfg.CopyFiles = raw.CopyFiles
	}
	return cfg, nil
}

// EnsureProject writes an empty project config to path unless one exists.
func EnsureProject(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := json.MarshalIndent(projectFile{CopyFiles: FileList{}}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
