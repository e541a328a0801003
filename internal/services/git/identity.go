package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Resolver maps a working directory to the canonical repository root, which
// is the same for every worktree of one repository.
type Resolver struct {
	runner CommandRunner
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by runner.
func NewResolver(runner CommandRunner, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{runner: runner, logger: logger}
}

// ResolveRepositoryRoot asks git for the common git directory and strips its
// trailing .git element. Without git it falls back to the worktree top-level
// and finally to dir itself.
func (r *Resolver) ResolveRepositoryRoot(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	if common, err := r.runner.Run(ctx, abs, "rev-parse", "--git-common-dir"); err == nil && common != "" {
		// git prints a relative common dir relative to the directory it ran in.
		if !filepath.IsAbs(common) {
			common = filepath.Join(abs, common)
		}
		return stripGitDir(filepath.Clean(common)), nil
	} else if err != nil {
		r.logger.Debug("git-common-dir unavailable", "dir", abs, "error", err)
	}

	if top, err := r.runner.Run(ctx, abs, "rev-parse", "--show-toplevel"); err == nil && top != "" {
		return filepath.Clean(top), nil
	}

	return abs, nil
}

func stripGitDir(p string) string {
	if filepath.Base(p) == ".git" {
		return filepath.Dir(p)
	}
	return p
}
