// Package diagnostics checks that the board and the repository's git
// worktrees agree with each other.
package diagnostics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/services/git"
)

// HealthStatus represents the overall health state
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
)

// WorktreeInfo describes one task worktree as seen from the board and git.
type WorktreeInfo struct {
	Path       string
	TaskID     string
	Branch     string
	Exists     bool
	Registered bool
}

// IsHealthy reports whether the worktree is both on disk and known to git.
func (w WorktreeInfo) IsHealthy() bool {
	return w.Exists && w.Registered
}

// SystemInfo represents overall system information
type SystemInfo struct {
	GoVersion string
	OS        string
	Arch      string
}

// Report contains everything one diagnostics run found.
type Report struct {
	Timestamp    time.Time
	OverallState HealthStatus
	RepoRoot     string
	Tasks        int
	Worktrees    []WorktreeInfo
	Orphans      []git.Worktree
	System       SystemInfo
	Warnings     []string
	Errors       []string
}

// GitClient lists the worktrees registered for a repository.
type GitClient interface {
	ListWorktrees(ctx context.Context, repoDir string) ([]git.Worktree, error)
}

// Service runs board and worktree consistency checks.
type Service struct {
	git    GitClient
	exists func(path string) bool
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new diagnostics service
func NewService(gitClient GitClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		git:    gitClient,
		exists: dirExists,
		logger: logger,
		now:    time.Now,
	}
}

// Collect compares the board against `git worktree list` for repoRoot.
// Worktrees on branches under <prefix>/task/ that no task references are
// reported as orphans.
func (s *Service) Collect(ctx context.Context, repoRoot, prefix string, board domain.Board) *Report {
	r := &Report{
		Timestamp: s.now(),
		RepoRoot:  repoRoot,
		Tasks:     len(board.Tasks),
		System: SystemInfo{
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
		},
	}

	seen := make(map[string]bool)
	for _, t := range board.Tasks {
		if seen[t.ID] {
			r.Errors = append(r.Errors, fmt.Sprintf("Duplicate task ID %s", t.ID))
		}
		seen[t.ID] = true
	}

	registered := make(map[string]git.Worktree)
	worktrees, err := s.git.ListWorktrees(ctx, repoRoot)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Failed to list worktrees: %v", err))
	}
	for _, wt := range worktrees {
		registered[filepath.Clean(wt.Path)] = wt
	}

	referenced := make(map[string]bool)
	for _, t := range board.Tasks {
		if t.Branch != "" {
			referenced[t.Branch] = true
		}
		if !t.HasWorktree() {
			continue
		}
		path := filepath.Clean(t.WorktreePath)
		_, known := registered[path]
		info := WorktreeInfo{
			Path:       t.WorktreePath,
			TaskID:     t.ID,
			Branch:     t.Branch,
			Exists:     s.exists(path),
			Registered: known || err != nil,
		}
		r.Worktrees = append(r.Worktrees, info)

		switch {
		case !info.Exists:
			r.Errors = append(r.Errors, fmt.Sprintf("Missing worktree for %s: %s", t.ID, t.WorktreePath))
		case !info.Registered:
			r.Warnings = append(r.Warnings, fmt.Sprintf("Worktree for %s is not registered with git: %s", t.ID, t.WorktreePath))
		}
		if t.Status.IsTerminal() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s is %s but still has a worktree", t.ID, t.Status))
		}
	}

	taskBranch := strings.TrimSuffix(prefix, "/") + "/task/"
	for _, wt := range worktrees {
		if wt.Bare || !strings.HasPrefix(wt.Branch, taskBranch) || referenced[wt.Branch] {
			continue
		}
		r.Orphans = append(r.Orphans, wt)
		r.Warnings = append(r.Warnings, fmt.Sprintf("Orphaned worktree %s on %s", wt.Path, wt.Branch))
	}
	sort.Slice(r.Orphans, func(i, j int) bool { return r.Orphans[i].Path < r.Orphans[j].Path })

	r.OverallState = HealthHealthy
	if len(r.Errors) > 0 {
		r.OverallState = HealthCritical
	} else if len(r.Warnings) > 0 {
		r.OverallState = HealthDegraded
	}

	s.logger.Debug("diagnostics collected",
		"repo", repoRoot,
		"state", r.OverallState,
		"warnings", len(r.Warnings),
		"errors", len(r.Errors))
	return r
}

// FormatReport returns a human-readable diagnostics report
func FormatReport(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(r.OverallState)))
	fmt.Fprintf(&b, "Repository: %s\n", r.RepoRoot)
	fmt.Fprintf(&b, "Checked: %s\n\n", r.Timestamp.Format("15:04:05"))

	if len(r.Errors) > 0 {
		b.WriteString("ERRORS:\n")
		for _, err := range r.Errors {
			fmt.Fprintf(&b, "  ✗ %s\n", err)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("WARNINGS:\n")
		for _, warn := range r.Warnings {
			fmt.Fprintf(&b, "  ⚠ %s\n", warn)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "TASKS: %d\n", r.Tasks)
	fmt.Fprintf(&b, "WORKTREES: %d active\n", len(r.Worktrees))
	if len(r.Worktrees) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, wt := range r.Worktrees {
		mark := "✓"
		if !wt.IsHealthy() {
			mark = "✗"
		}
		fmt.Fprintf(&b, "  %s %s: %s\n", mark, wt.TaskID, wt.Path)
	}
	b.WriteString("\n")

	b.WriteString("SYSTEM:\n")
	fmt.Fprintf(&b, "  Go: %s\n", r.System.GoVersion)
	fmt.Fprintf(&b, "  OS: %s/%s\n", r.System.OS, r.System.Arch)

	return b.String()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
