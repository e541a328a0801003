package git

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/vibedove/vibedove/internal/domain"
)

// AddWorktree creates a worktree for branch at wtDir, creating parent
// directories first.
func (c *Client) AddWorktree(ctx context.Context, wtDir, branch, repoDir string) error {
	if err := c.mkdirAll(filepath.Dir(wtDir), 0755); err != nil {
		return &domain.GitError{Op: "worktree-add", Dir: repoDir, Err: err}
	}

	c.logger.Info("adding worktree", "path", wtDir, "branch", branch)
	if _, err := c.runner.Run(ctx, repoDir, "worktree", "add", wtDir, branch); err != nil {
		return &domain.GitError{Op: "worktree-add", Dir: repoDir, Err: err}
	}
	return nil
}

// RemoveWorktree prunes stale worktree metadata and removes wtDir. If git
// cannot remove it the directory is deleted from the filesystem instead, so
// cleanup is never blocked by git-level inconsistency.
func (c *Client) RemoveWorktree(ctx context.Context, wtDir, repoDir string) error {
	c.logger.Info("removing worktree", "path", wtDir)

	if _, err := c.runner.Run(ctx, repoDir, "worktree", "prune"); err != nil {
		c.logger.Debug("worktree prune failed", "error", err)
	}

	_, gitErr := c.runner.Run(ctx, repoDir, "worktree", "remove", wtDir, "--force")
	if gitErr == nil {
		return nil
	}

	c.logger.Warn("git worktree remove failed, deleting directory", "path", wtDir, "error", gitErr)
	if err := c.removeAll(wtDir); err != nil {
		return &domain.GitError{Op: "worktree-remove", Dir: repoDir, Err: errors.Join(gitErr, err)}
	}
	return nil
}

// Worktree is one entry of `git worktree list`.
type Worktree struct {
	Path     string
	Branch   string
	Head     string
	Bare     bool
	Detached bool
}

// ListWorktrees returns every worktree registered for the repository.
func (c *Client) ListWorktrees(ctx context.Context, repoDir string) ([]Worktree, error) {
	output, err := c.runner.Run(ctx, repoDir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, &domain.GitError{Op: "worktree-list", Dir: repoDir, Err: err}
	}
	return parseWorktreeList(output), nil
}

// parseWorktreeList parses the output of 'git worktree list --porcelain'.
// Example output:
//
//	worktree /home/user/repo
//	HEAD abc123
//	branch refs/heads/main
//
//	worktree /tmp/vibedove/worktrees/vd-abc1234-fix-bug
//	HEAD def456
//	branch refs/heads/vd/task/abc1234-fix-bug
func parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	flush := func() {
		if current != nil && current.Path != "" {
			worktrees = append(worktrees, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case current == nil:
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			current.Bare = true
		case line == "detached":
			current.Detached = true
		case line == "":
			flush()
		}
	}
	flush()

	return worktrees
}
