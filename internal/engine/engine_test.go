package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/services/git"
	"github.com/vibedove/vibedove/internal/services/provision"
)

func TestExecute_Create(t *testing.T) {
	h := newHarness(t)

	res := h.exec(t, Create{Title: "  Fix bug  ", Description: "details"})

	assert.Equal(t, "abc1234", res.Task.ID)
	assert.Equal(t, "Fix bug", res.Task.Title)
	assert.Equal(t, "details", res.Task.Description)
	assert.Equal(t, domain.StatusTodo, res.Task.Status)
	assert.Empty(t, res.Task.Branch)
	assert.Empty(t, res.Task.WorktreePath)
	assert.Empty(t, res.Task.BaseBranch)
	assert.True(t, res.Task.CreatedAt.Equal(fixedNow))
	assert.Equal(t, "Created abc1234", res.Message())

	require.Len(t, h.store.board.Tasks, 1)
	assert.Equal(t, res.Board, h.store.board)
	assert.Empty(t, h.git.calls, "create has no git side effects")
}

func TestExecute_Create_UniqueIDs(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "existing"))

	res := h.exec(t, Create{Title: "second"})
	assert.Equal(t, "def5678", res.Task.ID)

	res = h.exec(t, Create{Title: "third"})
	assert.Equal(t, "ghi9012", res.Task.ID)

	seen := map[string]bool{}
	for _, task := range h.store.board.Tasks {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestExecute_Create_EmptyTitle(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.Execute(context.Background(), Create{Title: "   "})

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Zero(t, h.store.saves)
}

func TestExecute_Start(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))
	h.engine = h.engine.WithConfig(&config.Config{BranchPrefix: "vd", DefaultBaseBranch: "main", TmpRoot: "/tmp/wt"}, nil)

	res := h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, domain.StatusInProgress, res.Task.Status)
	assert.Equal(t, "vd/task/abc1234-fix-bug", res.Task.Branch)
	assert.Equal(t, "main", res.Task.BaseBranch)
	assert.Equal(t, filepath.Join("/tmp/wt", "vd-abc1234-fix-bug"), res.Task.WorktreePath)
	assert.True(t, res.Task.UpdatedAt.Equal(fixedNow))
	assert.Empty(t, res.Notes)
	assert.Equal(t, "Started abc1234 on vd/task/abc1234-fix-bug", res.Message())

	assert.Equal(t, []string{"create-branch", "add-worktree"}, h.git.ops())
	assert.Equal(t, res.Task, h.task(t, "abc1234"))
}

func TestExecute_Start_UsesCurrentBranchWhenNoDefault(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))
	h.git.current = "develop"

	res := h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, "develop", res.Task.BaseBranch)
	assert.Equal(t, "current-branch /repo", h.git.calls[0])
	assert.Equal(t, "create-branch vd/task/abc1234-fix-bug develop", h.git.calls[1])
}

func TestExecute_Start_RequiresTodo(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusInProgress,
		domain.StatusInReview,
		domain.StatusDone,
		domain.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			task := todoTask("abc1234", "Fix bug")
			task.Status = status
			h := newHarness(t, task)
			before := h.store.board

			_, err := h.engine.Execute(context.Background(), Start{ID: "abc1234"})

			assert.ErrorIs(t, err, domain.ErrPrecondition)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, before, h.store.board)
			assert.Zero(t, h.store.saves)
			assert.Empty(t, h.git.calls)
		})
	}
}

func TestExecute_Start_BlockingFailureLeavesBoard(t *testing.T) {
	tests := []struct {
		name    string
		failOp  string
		wantOps []string
	}{
		{"branch", "create-branch", []string{"create-branch"}},
		{"worktree", "add-worktree", []string{"create-branch", "add-worktree"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, todoTask("abc1234", "Fix bug"))
			h.engine = h.engine.WithConfig(&config.Config{BranchPrefix: "vd", DefaultBaseBranch: "main", TmpRoot: "/tmp/wt"}, nil)
			h.git.fail[tt.failOp] = &domain.GitError{Op: tt.failOp, Err: errors.New("boom")}

			_, err := h.engine.Execute(context.Background(), Start{ID: "abc1234"})

			var gitErr *domain.GitError
			require.ErrorAs(t, err, &gitErr)
			assert.Equal(t, tt.wantOps, h.git.ops())
			assert.Equal(t, domain.StatusTodo, h.task(t, "abc1234").Status)
			assert.Zero(t, h.store.saves)
		})
	}
}

func TestExecute_Start_MissingCopyFileIsAdvisory(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug")).withProject(&config.ProjectConfig{
		CopyFiles: config.FileList{".env.missing"},
	})
	h.prov.report = provision.Report{Failures: []provision.Failure{
		{Entry: ".env.missing", Err: errors.New("no such file or directory")},
	}}

	res := h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, domain.StatusInProgress, h.task(t, "abc1234").Status)
	assert.Equal(t, []string{".env.missing"}, h.prov.copied)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], ".env.missing")
	assert.Contains(t, res.Message(), "Started abc1234")
}

func TestExecute_Start_SetupScript(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug")).withProject(&config.ProjectConfig{
		SetupScript: "npm install",
	})
	h.prov.setupErr = errors.New("exit status 1")

	res := h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, []string{"npm install"}, h.prov.scripts)
	assert.Contains(t, h.prov.env, "VIBEDOVE_TASK_ID=abc1234")
	assert.Contains(t, h.prov.env, "VIBEDOVE_BRANCH=vd/task/abc1234-fix-bug")
	assert.Contains(t, h.prov.env, "VIBEDOVE_REPO_ROOT=/repo")
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "setup script failed")
	assert.Equal(t, domain.StatusInProgress, res.Task.Status)
}

func TestExecute_Start_SkipsEmptyProvisioning(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))

	h.exec(t, Start{ID: "abc1234"})

	assert.Empty(t, h.prov.copied)
	assert.Empty(t, h.prov.scripts)
}

func TestExecute_Start_AfterReopen(t *testing.T) {
	wt := t.TempDir()
	task := startedTask("abc1234", "Fix bug", domain.StatusInProgress)
	task.WorktreePath = wt
	h := newHarness(t, task).withProject(&config.ProjectConfig{
		CopyFiles:   []string{".env"},
		SetupScript: "make deps",
	})
	h.git.worktrees = []git.Worktree{{Path: "/repo", Branch: "main"}, {Path: wt, Branch: task.Branch}}

	h.exec(t, Reopen{ID: "abc1234"})
	res := h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, domain.StatusInProgress, res.Task.Status)
	assert.Equal(t, "vd/task/abc1234-x", res.Task.Branch)
	assert.Equal(t, wt, res.Task.WorktreePath)
	assert.Equal(t, "main", res.Task.BaseBranch)
	assert.Equal(t, []string{"list-worktrees", "create-branch"}, h.git.ops(), "live worktree is reused")
	assert.Empty(t, h.prov.copied)
	assert.Empty(t, h.prov.scripts)
	assert.Equal(t, "Resumed abc1234 on vd/task/abc1234-x", res.Message())
}

func TestExecute_Start_AfterReopen_StaleWorktree(t *testing.T) {
	tests := []struct {
		name       string
		dirPresent bool
		registered bool
	}{
		{"directory gone", false, true},
		{"not registered", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wt := filepath.Join(t.TempDir(), "vd-abc1234-x")
			if tt.dirPresent {
				require.NoError(t, os.Mkdir(wt, 0o755))
			}
			task := startedTask("abc1234", "Fix bug", domain.StatusTodo)
			task.WorktreePath = wt
			h := newHarness(t, task)
			if tt.registered {
				h.git.worktrees = []git.Worktree{{Path: wt, Branch: task.Branch}}
			}

			res := h.exec(t, Start{ID: "abc1234"})

			assert.Equal(t, domain.StatusInProgress, res.Task.Status)
			assert.Equal(t, wt, res.Task.WorktreePath)
			assert.Contains(t, h.git.calls, "remove-worktree "+wt)
			assert.Contains(t, h.git.calls, "add-worktree "+wt+" vd/task/abc1234-x")
			assert.Equal(t, "Started abc1234 on vd/task/abc1234-x", res.Message())
		})
	}
}

func TestExecute_Start_ListWorktreesFailure(t *testing.T) {
	task := startedTask("abc1234", "Fix bug", domain.StatusTodo)
	task.WorktreePath = t.TempDir()
	h := newHarness(t, task)
	h.git.fail["list-worktrees"] = errors.New("boom")

	_, err := h.engine.Execute(context.Background(), Start{ID: "abc1234"})

	require.Error(t, err)
	assert.Equal(t, domain.StatusTodo, h.task(t, "abc1234").Status)
	assert.Zero(t, h.store.saves)
}

func TestExecute_ReviewAndReopen(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))

	res := h.exec(t, Review{ID: "abc1234"})
	assert.Equal(t, domain.StatusInReview, res.Task.Status)

	_, err := h.engine.Execute(context.Background(), Reopen{ID: "abc1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "reopen only applies to In Progress")

	h = newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))
	res = h.exec(t, Reopen{ID: "abc1234"})
	assert.Equal(t, domain.StatusTodo, res.Task.Status)
	assert.Equal(t, "vd/task/abc1234-x", res.Task.Branch, "reopen keeps resources")
	assert.NotEmpty(t, res.Task.WorktreePath)
	assert.Empty(t, h.git.calls)
}

func TestExecute_Complete(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInReview))

	res := h.exec(t, Complete{ID: "abc1234"})

	assert.Equal(t, domain.StatusDone, res.Task.Status)
	assert.Empty(t, res.Task.WorktreePath)
	assert.Equal(t, "vd/task/abc1234-x", res.Task.Branch, "branch is kept")
	assert.Equal(t, "Marked abc1234 as Done", res.Message())
	assert.Equal(t, []string{"remove-worktree"}, h.git.ops())
}

func TestExecute_Complete_WorktreeFailureIsAdvisory(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))
	h.git.fail["remove-worktree"] = errors.New("permission denied")

	res := h.exec(t, Complete{ID: "abc1234"})

	assert.Equal(t, domain.StatusDone, res.Task.Status)
	assert.Empty(t, res.Task.WorktreePath)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "permission denied")
}

func TestExecute_Complete_FromTodoWithoutResources(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))

	res := h.exec(t, Complete{ID: "abc1234"})

	assert.Equal(t, domain.StatusDone, res.Task.Status)
	assert.Empty(t, h.git.calls)
}

func TestExecute_Merge(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInReview))

	res := h.exec(t, Merge{ID: "abc1234"})

	assert.Equal(t, domain.StatusDone, res.Task.Status)
	assert.Empty(t, res.Task.Branch)
	assert.Empty(t, res.Task.WorktreePath)
	assert.Equal(t, []string{
		"merge main vd/task/abc1234-x",
		"remove-worktree /tmp/wt/vd-abc1234-x",
		"switch-off vd/task/abc1234-x main",
		"delete-branch vd/task/abc1234-x true",
	}, h.git.calls)
	assert.Equal(t, "Merged vd/task/abc1234-x into main", res.Message())
}

func TestExecute_Merge_MissingBranchData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Task)
	}{
		{"no branch", func(t *domain.Task) { t.Branch = "" }},
		{"no base branch", func(t *domain.Task) { t.BaseBranch = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := startedTask("abc1234", "Fix bug", domain.StatusInProgress)
			tt.mutate(&task)
			h := newHarness(t, task)

			_, err := h.engine.Execute(context.Background(), Merge{ID: "abc1234"})

			var pre *domain.PreconditionError
			require.ErrorAs(t, err, &pre)
			assert.Equal(t, domain.StatusInProgress, h.task(t, "abc1234").Status)
			assert.Empty(t, h.git.calls)
		})
	}
}

func TestExecute_Merge_ConflictLeavesTask(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))
	h.git.fail["merge"] = &domain.MergeError{Base: "main", Head: "vd/task/abc1234-x", Conflicts: []string{"a.go"}}

	_, err := h.engine.Execute(context.Background(), Merge{ID: "abc1234"})

	var mergeErr *domain.MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, []string{"a.go"}, mergeErr.Conflicts)
	assert.Equal(t, []string{"merge"}, h.git.ops(), "no cleanup after a failed merge")
	task := h.task(t, "abc1234")
	assert.Equal(t, domain.StatusInProgress, task.Status)
	assert.Equal(t, "vd/task/abc1234-x", task.Branch)
	assert.Zero(t, h.store.saves)
}

func TestExecute_Merge_CleanupFailuresAreNotes(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))
	h.git.fail["delete-branch"] = errors.New("not fully merged")

	res := h.exec(t, Merge{ID: "abc1234"})

	assert.Equal(t, domain.StatusDone, res.Task.Status)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "not fully merged")
	assert.Contains(t, res.Message(), "not fully merged")
}

func TestExecute_Cancel_AlwaysClearsResources(t *testing.T) {
	for _, failing := range []string{"", "remove-worktree", "switch-off", "delete-branch"} {
		t.Run("fail="+failing, func(t *testing.T) {
			h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInProgress))
			if failing != "" {
				h.git.fail[failing] = errors.New("git failed")
			}

			res := h.exec(t, Cancel{ID: "abc1234"})

			task := h.task(t, "abc1234")
			assert.Equal(t, domain.StatusCancelled, task.Status)
			assert.Empty(t, task.Branch)
			assert.Empty(t, task.WorktreePath)
			assert.Equal(t, []string{"remove-worktree", "switch-off", "delete-branch"}, h.git.ops())
			if failing != "" {
				assert.Len(t, res.Notes, 1)
			} else {
				assert.Empty(t, res.Notes)
			}
		})
	}
}

func TestExecute_Cancel_ForcesBranchDelete(t *testing.T) {
	h := newHarness(t, startedTask("abc1234", "Fix bug", domain.StatusInReview))

	h.exec(t, Cancel{ID: "abc1234"})

	assert.Contains(t, h.git.calls, "delete-branch vd/task/abc1234-x true")
}

func TestExecute_Cancel_TerminalRejected(t *testing.T) {
	task := todoTask("abc1234", "Fix bug")
	task.Status = domain.StatusDone
	h := newHarness(t, task)

	_, err := h.engine.Execute(context.Background(), Cancel{ID: "abc1234"})

	var trErr *domain.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, domain.StatusDone, trErr.From)
}

func TestExecute_Delete(t *testing.T) {
	h := newHarness(t,
		startedTask("abc1234", "Fix bug", domain.StatusInProgress),
		todoTask("def5678", "Other"),
	)
	h.git.fail["remove-worktree"] = errors.New("busy")
	h.git.fail["delete-branch"] = errors.New("checked out")

	res := h.exec(t, Delete{ID: "abc1234"})

	assert.True(t, res.Removed)
	assert.Equal(t, "abc1234", res.Task.ID)
	assert.Len(t, res.Notes, 2, "each cleanup failure is tracked")
	assert.Equal(t, []string{"remove-worktree", "delete-branch"}, h.git.ops())
	require.Len(t, h.store.board.Tasks, 1)
	assert.Equal(t, "def5678", h.store.board.Tasks[0].ID)
}

func TestExecute_Delete_AnyStatus(t *testing.T) {
	task := todoTask("abc1234", "Fix bug")
	task.Status = domain.StatusCancelled
	h := newHarness(t, task)

	res := h.exec(t, Delete{ID: "abc1234"})

	assert.True(t, res.Removed)
	assert.Empty(t, h.store.board.Tasks)
	assert.Empty(t, h.git.calls)
}

func TestExecute_Edit(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))

	res := h.exec(t, EditTitle{ID: "abc1234", Title: " Fix the bug "})
	assert.Equal(t, "Fix the bug", res.Task.Title)
	assert.True(t, res.Task.UpdatedAt.Equal(fixedNow))

	res = h.exec(t, EditDescription{ID: "abc1234", Description: "steps to reproduce"})
	assert.Equal(t, "steps to reproduce", res.Task.Description)

	_, err := h.engine.Execute(context.Background(), EditTitle{ID: "abc1234", Title: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Equal(t, "Fix the bug", h.task(t, "abc1234").Title)
}

func TestExecute_UnknownTask(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.Execute(context.Background(), Start{ID: "nope123"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecute_SaveFailurePropagates(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))
	h.store.saveErr = errors.New("disk full")

	_, err := h.engine.Execute(context.Background(), Review{ID: "abc1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.engine.Execute(context.Background(), Complete{ID: "abc1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save board: disk full")
}

func TestExecute_ResolverFailure(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))
	h.engine.resolver = fakeResolver{err: errors.New("not a repo")}

	_, err := h.engine.Execute(context.Background(), Start{ID: "abc1234"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve repository")
	assert.Empty(t, h.git.calls)
}

func TestExecute_DoesNotMutateCallerBoard(t *testing.T) {
	h := newHarness(t, todoTask("abc1234", "Fix bug"))
	before := h.store.board
	snapshot := before.Tasks[0]

	h.exec(t, Start{ID: "abc1234"})

	assert.Equal(t, snapshot, before.Tasks[0])
}

func TestResult_Message(t *testing.T) {
	r := Result{summary: "Started abc1234 on vd/task/abc1234-x"}
	assert.Equal(t, "Started abc1234 on vd/task/abc1234-x", r.Message())

	r.Notes = []string{"copy failed for 1 file(s): .env", "setup script failed: exit 1"}
	assert.Equal(t, "Started abc1234 on vd/task/abc1234-x (copy failed for 1 file(s): .env; setup script failed: exit 1)", r.Message())
}
