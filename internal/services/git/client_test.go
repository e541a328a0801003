package git

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibedove/vibedove/internal/domain"
)

func TestClient_CurrentBranch(t *testing.T) {
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		return "main", nil
	}
	client := NewClient(mock, nil)

	branch, err := client.CurrentBranch(context.Background(), "/repo")

	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	mock.AssertCommand(t, "rev-parse --abbrev-ref HEAD")
}

func TestClient_CurrentBranch_GitUnusable(t *testing.T) {
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		return "", failWith("fatal: not a git repository")
	}
	client := NewClient(mock, nil)

	_, err := client.CurrentBranch(context.Background(), "/tmp")

	var gitErr *domain.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "current-branch", gitErr.Op)
}

func TestClient_BranchExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"exists", nil, true},
		{"missing", failWith(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockRunner()
			mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
				return "", tt.err
			}
			client := NewClient(mock, nil)

			assert.Equal(t, tt.want, client.BranchExists(context.Background(), "feature", "/repo"))
			mock.AssertCommand(t, "rev-parse --verify --quiet feature")
		})
	}
}

func TestClient_CreateBranch_Idempotent(t *testing.T) {
	created := map[string]string{}

	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		switch {
		case args[0] == "rev-parse" && args[1] == "--verify":
			if _, ok := created[args[3]]; ok {
				return "", nil
			}
			return "", failWith("")
		case args[0] == "branch":
			created[args[1]] = args[2]
			return "", nil
		}
		return "", nil
	}
	client := NewClient(mock, nil)
	ctx := context.Background()

	require.NoError(t, client.CreateBranch(ctx, "vd/task/abc1234-x", "main", "/repo"))
	require.NoError(t, client.CreateBranch(ctx, "vd/task/abc1234-x", "develop", "/repo"))

	assert.Equal(t, "main", created["vd/task/abc1234-x"], "second call must not move the branch")
	count := 0
	for _, cmd := range mock.commands {
		if cmd == "branch vd/task/abc1234-x main" || cmd == "branch vd/task/abc1234-x develop" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestClient_CreateBranch_Failure(t *testing.T) {
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		if args[0] == "branch" {
			return "", failWith("fatal: not a valid object name: 'nope'")
		}
		return "", failWith("")
	}
	client := NewClient(mock, nil)

	err := client.CreateBranch(context.Background(), "x", "nope", "/repo")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid object name")
}

func TestClient_DeleteBranch(t *testing.T) {
	mock := NewMockRunner()
	client := NewClient(mock, nil)
	ctx := context.Background()

	require.NoError(t, client.DeleteBranch(ctx, "x", "/repo", true))
	require.NoError(t, client.DeleteBranch(ctx, "y", "/repo", false))

	mock.AssertCommand(t, "branch -D x")
	mock.AssertCommand(t, "branch -d y")
}

func TestClient_DeleteBranch_Failure(t *testing.T) {
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		return "", failWith("error: The branch 'y' is not fully merged.")
	}
	client := NewClient(mock, nil)

	err := client.DeleteBranch(context.Background(), "y", "/repo", false)

	var gitErr *domain.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "branch-delete", gitErr.Op)
	assert.Contains(t, err.Error(), "not fully merged")
}

func TestClient_SwitchOffBranch(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		fallback string
		wantCmd  bool
		wantErr  bool
	}{
		{"not on branch", "main", "main", false, false},
		{"on branch switches", "feature", "main", true, false},
		{"on branch without fallback", "feature", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockRunner()
			mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
				if args[0] == "rev-parse" {
					return tt.current, nil
				}
				return "", nil
			}
			client := NewClient(mock, nil)

			err := client.SwitchOffBranch(context.Background(), "feature", tt.fallback, "/repo")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantCmd {
				mock.AssertCommand(t, "checkout "+tt.fallback)
			} else {
				mock.AssertNoCommand(t, "checkout")
			}
		})
	}
}

func TestClient_MergeBranch_Success(t *testing.T) {
	current := "feature-x"
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		switch args[0] {
		case "rev-parse":
			return current, nil
		case "checkout":
			current = args[1]
		}
		return "", nil
	}
	client := NewClient(mock, nil)

	err := client.MergeBranch(context.Background(), "main", "vd/task/abc1234-x", "/repo")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"rev-parse --abbrev-ref HEAD",
		"checkout main",
		"merge --no-ff --no-edit vd/task/abc1234-x",
		"checkout feature-x",
	}, mock.commands)
	assert.Equal(t, "feature-x", current)
}

func TestClient_MergeBranch_AlreadyOnBase(t *testing.T) {
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		if args[0] == "rev-parse" {
			return "main", nil
		}
		return "", nil
	}
	client := NewClient(mock, nil)

	require.NoError(t, client.MergeBranch(context.Background(), "main", "topic", "/repo"))
	mock.AssertNoCommand(t, "checkout")
}

func TestClient_MergeBranch_ConflictRestoresOriginal(t *testing.T) {
	current := "develop"
	aborted := false
	mock := NewMockRunner()
	mock.handler = func(ctx context.Context, dir string, args ...string) (string, error) {
		switch {
		case args[0] == "rev-parse":
			return current, nil
		case args[0] == "checkout":
			current = args[1]
			return "", nil
		case args[0] == "merge" && args[1] == "--abort":
			aborted = true
			return "", nil
		case args[0] == "merge":
			out := "Auto-merging a.go\nCONFLICT (content): Merge conflict in a.go\nAutomatic merge failed"
			return out, &CommandError{Stdout: out, Err: errors.New("exit status 1")}
		}
		return "", nil
	}
	client := NewClient(mock, nil)

	err := client.MergeBranch(context.Background(), "main", "topic", "/repo")

	var mergeErr *domain.MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, []string{"a.go"}, mergeErr.Conflicts)
	assert.True(t, aborted, "merge must be aborted")
	assert.Equal(t, "develop", current, "original branch must be restored")
}

func TestParseConflicts(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "no conflicts",
			output: "Merge made by the 'ort' strategy.",
			want:   []string{},
		},
		{
			name: "content and modify/delete",
			output: `CONFLICT (content): Merge conflict in src/main.go
CONFLICT (modify/delete): docs/old.md deleted in HEAD and modified in topic.`,
			want: []string{"src/main.go", "docs/old.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseConflicts(tt.output))
		})
	}
}

func TestCommandError(t *testing.T) {
	err := &CommandError{
		Args:   []string{"branch", "x", "main"},
		Stdout: "out",
		Stderr: "fatal: bad",
		Err:    errors.New("exit status 128"),
	}

	assert.Equal(t, "git branch x main failed: exit status 128: fatal: bad", err.Error())
	assert.Equal(t, "out\nfatal: bad", err.Output())
}

func TestClient_MergeThenForceDelete_RootNotOnBase(t *testing.T) {
	repo := initRepo(t)
	runner := NewExecRunner()
	client := NewClient(runner, nil)
	ctx := context.Background()

	require.NoError(t, client.CreateBranch(ctx, "other", "main", repo))
	require.NoError(t, client.Checkout(ctx, "other", repo))
	require.NoError(t, client.CreateBranch(ctx, "vd/task/abc1234-x", "main", repo))
	wt := filepath.Join(t.TempDir(), "vd-abc1234-x")
	require.NoError(t, client.AddWorktree(ctx, wt, "vd/task/abc1234-x", repo))
	_, err := runner.Run(ctx, wt, "commit", "-q", "--allow-empty", "-m", "work")
	require.NoError(t, err)

	require.NoError(t, client.MergeBranch(ctx, "main", "vd/task/abc1234-x", repo))
	current, err := client.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "other", current, "original checkout is restored")

	require.NoError(t, client.RemoveWorktree(ctx, wt, repo))
	require.NoError(t, client.DeleteBranch(ctx, "vd/task/abc1234-x", repo, true))
	assert.False(t, client.BranchExists(ctx, "vd/task/abc1234-x", repo))
}
