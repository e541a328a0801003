package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vibedove/vibedove/internal/domain"
)

// Client provides high-level git operations. Every operation takes the
// directory it runs in explicitly.
type Client struct {
	runner CommandRunner
	logger *slog.Logger

	mkdirAll  func(string, os.FileMode) error
	removeAll func(string) error
}

// NewClient creates a new git client.
func NewClient(runner CommandRunner, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		runner:    runner,
		logger:    logger,
		mkdirAll:  os.MkdirAll,
		removeAll: os.RemoveAll,
	}
}

// CurrentBranch returns the name of the branch checked out in dir.
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	c.logger.Debug("getting current branch", "dir", dir)

	output, err := c.runner.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &domain.GitError{Op: "current-branch", Dir: dir, Err: err}
	}

	branch := strings.TrimSpace(output)
	if branch == "" {
		return "", &domain.GitError{Op: "current-branch", Dir: dir, Err: errors.New("empty branch name")}
	}
	return branch, nil
}

// BranchExists reports whether ref resolves in dir. Any failure means false.
func (c *Client) BranchExists(ctx context.Context, name, dir string) bool {
	_, err := c.runner.Run(ctx, dir, "rev-parse", "--verify", "--quiet", name)
	return err == nil
}

// CreateBranch creates name from base. It is a no-op when the branch
// already exists, so the branch keeps its original start point.
func (c *Client) CreateBranch(ctx context.Context, name, base, dir string) error {
	if c.BranchExists(ctx, name, dir) {
		c.logger.Debug("branch already exists", "branch", name)
		return nil
	}

	c.logger.Info("creating branch", "branch", name, "base", base, "dir", dir)
	if _, err := c.runner.Run(ctx, dir, "branch", name, base); err != nil {
		return &domain.GitError{Op: "branch", Dir: dir, Err: err}
	}
	return nil
}

// DeleteBranch deletes a local branch. With force it uses -D, which also
// drops unmerged commits; otherwise git refuses unmerged branches.
func (c *Client) DeleteBranch(ctx context.Context, name, dir string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}

	c.logger.Info("deleting branch", "branch", name, "force", force, "dir", dir)
	if _, err := c.runner.Run(ctx, dir, "branch", flag, name); err != nil {
		return &domain.GitError{Op: "branch-delete", Dir: dir, Err: err}
	}
	return nil
}

// Checkout checks out ref in dir.
func (c *Client) Checkout(ctx context.Context, ref, dir string) error {
	c.logger.Info("checking out", "ref", ref, "dir", dir)

	if _, err := c.runner.Run(ctx, dir, "checkout", ref); err != nil {
		return &domain.GitError{Op: "checkout", Dir: dir, Err: err}
	}
	return nil
}

// SwitchOffBranch checks out fallback if branch is currently checked out in
// dir, so that branch can be deleted.
func (c *Client) SwitchOffBranch(ctx context.Context, branch, fallback, dir string) error {
	current, err := c.CurrentBranch(ctx, dir)
	if err != nil {
		return err
	}
	if current != branch {
		return nil
	}
	if fallback == "" || fallback == branch {
		return &domain.GitError{Op: "checkout", Dir: dir, Err: fmt.Errorf("no branch to switch to from %s", branch)}
	}
	return c.Checkout(ctx, fallback, dir)
}

// MergeBranch merges head into base with a merge commit. It checks out base
// first if needed. On failure the merge is aborted, the original branch is
// restored and a *domain.MergeError is returned. On success the original
// branch is checked out again.
func (c *Client) MergeBranch(ctx context.Context, base, head, dir string) error {
	original, err := c.CurrentBranch(ctx, dir)
	if err != nil {
		return err
	}

	c.logger.Info("merging branch", "base", base, "head", head, "original", original, "dir", dir)

	if original != base {
		if err := c.Checkout(ctx, base, dir); err != nil {
			return &domain.MergeError{Base: base, Head: head, Err: err}
		}
	}

	output, err := c.runner.Run(ctx, dir, "merge", "--no-ff", "--no-edit", head)
	if err != nil {
		combined := output
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			combined = cmdErr.Output()
		}
		mergeErr := &domain.MergeError{
			Base:      base,
			Head:      head,
			Conflicts: parseConflicts(combined),
			Output:    combined,
			Err:       err,
		}
		c.logger.Warn("merge failed, aborting", "head", head, "conflicts", mergeErr.Conflicts)

		if _, abortErr := c.runner.Run(ctx, dir, "merge", "--abort"); abortErr != nil {
			c.logger.Debug("merge abort failed", "error", abortErr)
		}
		c.restoreBranch(ctx, original, base, dir)
		return mergeErr
	}

	c.restoreBranch(ctx, original, base, dir)
	c.logger.Info("merge completed successfully", "head", head, "base", base)
	return nil
}

func (c *Client) restoreBranch(ctx context.Context, original, current, dir string) {
	if original == current {
		return
	}
	if err := c.Checkout(ctx, original, dir); err != nil {
		c.logger.Error("failed to restore original branch", "branch", original, "error", err)
	}
}

// parseConflicts extracts conflict file paths from git merge output.
// Handles multiple conflict formats:
//   - "CONFLICT (content): Merge conflict in <file>"
//   - "CONFLICT (modify/delete): <file> deleted in HEAD and modified in ..."
func parseConflicts(output string) []string {
	conflicts := make([]string, 0)

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "CONFLICT") {
			continue
		}

		if _, file, ok := strings.Cut(line, "Merge conflict in "); ok {
			conflicts = append(conflicts, strings.TrimSpace(file))
			continue
		}

		if idx := strings.Index(line, "): "); idx != -1 {
			rest := line[idx+3:]
			var file string
			if idx2 := strings.Index(rest, " deleted in "); idx2 != -1 {
				file = strings.TrimSpace(rest[:idx2])
			} else if idx2 := strings.Index(rest, " modified in "); idx2 != -1 {
				file = strings.TrimSpace(rest[:idx2])
			}
			if file != "" {
				conflicts = append(conflicts, file)
			}
		}
	}

	return conflicts
}
