package diagnostics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/services/git"
)

type mockGitClient struct {
	worktrees []git.Worktree
	err       error
}

func (m *mockGitClient) ListWorktrees(ctx context.Context, repoDir string) ([]git.Worktree, error) {
	return m.worktrees, m.err
}

func newTestService(g GitClient, onDisk ...string) *Service {
	s := NewService(g, nil)
	disk := make(map[string]bool)
	for _, p := range onDisk {
		disk[p] = true
	}
	s.exists = func(path string) bool { return disk[path] }
	s.now = func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

func started(id string, status domain.Status) domain.Task {
	return domain.Task{
		ID:           id,
		Title:        "task " + id,
		Status:       status,
		Branch:       "vd/task/" + id + "-x",
		WorktreePath: "/tmp/wt/vd-" + id + "-x",
		BaseBranch:   "main",
	}
}

func TestCollect(t *testing.T) {
	primary := git.Worktree{Path: "/repo", Branch: "main"}
	registered := func(id string) git.Worktree {
		return git.Worktree{Path: "/tmp/wt/vd-" + id + "-x", Branch: "vd/task/" + id + "-x"}
	}

	tests := []struct {
		name      string
		tasks     []domain.Task
		worktrees []git.Worktree
		onDisk    []string
		gitErr    error
		want      HealthStatus
		wantMsg   string
	}{
		{
			name:      "healthy",
			tasks:     []domain.Task{started("aaa1111", domain.StatusInProgress), {ID: "bbb2222", Status: domain.StatusTodo}},
			worktrees: []git.Worktree{primary, registered("aaa1111")},
			onDisk:    []string{"/tmp/wt/vd-aaa1111-x"},
			want:      HealthHealthy,
		},
		{
			name:      "missing directory",
			tasks:     []domain.Task{started("aaa1111", domain.StatusInProgress)},
			worktrees: []git.Worktree{primary, registered("aaa1111")},
			want:      HealthCritical,
			wantMsg:   "Missing worktree for aaa1111",
		},
		{
			name:      "not registered",
			tasks:     []domain.Task{started("aaa1111", domain.StatusInReview)},
			worktrees: []git.Worktree{primary},
			onDisk:    []string{"/tmp/wt/vd-aaa1111-x"},
			want:      HealthDegraded,
			wantMsg:   "not registered with git",
		},
		{
			name:      "orphan",
			worktrees: []git.Worktree{primary, registered("ccc3333"), {Path: "/elsewhere", Branch: "feature/x"}},
			want:      HealthDegraded,
			wantMsg:   "Orphaned worktree /tmp/wt/vd-ccc3333-x",
		},
		{
			name:      "terminal task keeps worktree",
			tasks:     []domain.Task{started("aaa1111", domain.StatusDone)},
			worktrees: []git.Worktree{primary, registered("aaa1111")},
			onDisk:    []string{"/tmp/wt/vd-aaa1111-x"},
			want:      HealthDegraded,
			wantMsg:   "aaa1111 is Done but still has a worktree",
		},
		{
			name:    "duplicate id",
			tasks:   []domain.Task{{ID: "aaa1111", Status: domain.StatusTodo}, {ID: "aaa1111", Status: domain.StatusTodo}},
			want:    HealthCritical,
			wantMsg: "Duplicate task ID aaa1111",
		},
		{
			name:    "git failure",
			gitErr:  errors.New("not a git repository"),
			want:    HealthCritical,
			wantMsg: "Failed to list worktrees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(&mockGitClient{worktrees: tt.worktrees, err: tt.gitErr}, tt.onDisk...)
			r := s.Collect(context.Background(), "/repo", "vd", domain.Board{Tasks: tt.tasks})

			if r.OverallState != tt.want {
				t.Errorf("OverallState = %s, want %s (warnings %v, errors %v)", r.OverallState, tt.want, r.Warnings, r.Errors)
			}
			if tt.wantMsg == "" {
				return
			}
			all := strings.Join(append(r.Errors, r.Warnings...), "\n")
			if !strings.Contains(all, tt.wantMsg) {
				t.Errorf("findings %q do not mention %q", all, tt.wantMsg)
			}
		})
	}
}

func TestCollect_Orphans(t *testing.T) {
	s := newTestService(&mockGitClient{worktrees: []git.Worktree{
		{Path: "/repo", Branch: "main"},
		{Path: "/tmp/wt/b", Branch: "vd/task/bbb-x"},
		{Path: "/tmp/wt/a", Branch: "vd/task/aaa-x"},
		{Path: "/tmp/wt/c", Branch: "other/task/ccc-x"},
	}})

	r := s.Collect(context.Background(), "/repo", "vd", domain.Board{})

	if len(r.Orphans) != 2 {
		t.Fatalf("got %d orphans, want 2: %+v", len(r.Orphans), r.Orphans)
	}
	if r.Orphans[0].Path != "/tmp/wt/a" || r.Orphans[1].Path != "/tmp/wt/b" {
		t.Errorf("orphans not sorted by path: %+v", r.Orphans)
	}
}

func TestFormatReport(t *testing.T) {
	s := newTestService(&mockGitClient{worktrees: []git.Worktree{{Path: "/repo", Branch: "main"}}})
	r := s.Collect(context.Background(), "/repo", "vd", domain.Board{Tasks: []domain.Task{
		started("aaa1111", domain.StatusInProgress),
	}})

	out := FormatReport(r)
	for _, want := range []string{
		"Status: CRITICAL",
		"Repository: /repo",
		"ERRORS:",
		"✗ Missing worktree for aaa1111",
		"TASKS: 1",
		"✗ aaa1111: /tmp/wt/vd-aaa1111-x",
		"SYSTEM:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatReport_Empty(t *testing.T) {
	s := newTestService(&mockGitClient{})
	out := FormatReport(s.Collect(context.Background(), "/repo", "vd", domain.Board{}))

	if !strings.Contains(out, "Status: HEALTHY") {
		t.Errorf("expected healthy report:\n%s", out)
	}
	if !strings.Contains(out, "(none)") {
		t.Errorf("expected empty worktree list:\n%s", out)
	}
}
