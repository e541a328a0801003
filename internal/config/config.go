// Package config loads the global and per-project vibedove settings and
// resolves where per-repository state lives on disk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (VIBEDOVE_BRANCHPREFIX, ...).
const EnvPrefix = "VIBEDOVE"

// Config represents the global vibedove configuration
type Config struct {
	BranchPrefix      string `json:"branchPrefix" mapstructure:"branchPrefix"`
	DefaultBaseBranch string `json:"defaultBaseBranch" mapstructure:"defaultBaseBranch"`
	TmpRoot           string `json:"tmpRoot" mapstructure:"tmpRoot"`
	RemoteName        string `json:"remoteName" mapstructure:"remoteName"`
	Editor            string `json:"editor" mapstructure:"editor"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BranchPrefix:      "vd",
		DefaultBaseBranch: "", // current branch at start time
		TmpRoot:           "", // $TMPDIR/vibedove/worktrees
		RemoteName:        "origin",
		Editor:            os.Getenv("EDITOR"),
	}
}

// BaseBranchLabel returns the configured base branch or "current".
func (c *Config) BaseBranchLabel() string {
	if c.DefaultBaseBranch == "" {
		return "current"
	}
	return c.DefaultBaseBranch
}

// LoadGlobal reads the global config file at path, applies VIBEDOVE_*
// environment overrides and fills unset values with defaults. A missing
// file yields defaults. On a parse error the defaults are returned together
// with the error so callers can keep running.
func LoadGlobal(path string) (*Config, error) {
	v := newViper(path)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to decode config: %w", err)
	}
	return MergeWithDefaults(&cfg), nil
}

// LoadGlobalStrict is LoadGlobal for validation: a missing file is an error.
func LoadGlobalStrict(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cfg, err := LoadGlobal(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("branchPrefix", d.BranchPrefix)
	v.SetDefault("defaultBaseBranch", d.DefaultBaseBranch)
	v.SetDefault("tmpRoot", d.TmpRoot)
	v.SetDefault("remoteName", d.RemoteName)
	v.SetDefault("editor", d.Editor)
	return v
}

// SaveGlobal writes cfg to path as pretty-printed JSON.
func SaveGlobal(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureGlobal writes the defaults to path unless a file already exists.
func EnsureGlobal(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return SaveGlobal(DefaultConfig(), path)
}

// MergeWithDefaults fills in missing values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	if strings.TrimSpace(cfg.BranchPrefix) == "" {
		cfg.BranchPrefix = defaults.BranchPrefix
	}
	if cfg.RemoteName == "" {
		cfg.RemoteName = defaults.RemoteName
	}
	if cfg.Editor == "" {
		cfg.Editor = defaults.Editor
	}

	return cfg
}

// ResolveTmpRoot returns the directory under which task worktrees are created.
func ResolveTmpRoot(cfg *Config) string {
	if cfg != nil && cfg.TmpRoot != "" {
		return cfg.TmpRoot
	}
	tmp := os.Getenv("TMPDIR")
	if tmp == "" {
		tmp = os.TempDir()
	}
	return filepath.Join(tmp, "vibedove", "worktrees")
}
