package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/services/git"
	"github.com/vibedove/vibedove/internal/services/provision"
)

type fakeStore struct {
	board   domain.Board
	saves   int
	saveErr error
	loadErr error
}

func (s *fakeStore) Load(ctx context.Context) (domain.Board, error) {
	if s.loadErr != nil {
		return domain.Board{}, s.loadErr
	}
	return s.board, nil
}

func (s *fakeStore) Save(ctx context.Context, board domain.Board) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.board = board
	return nil
}

// fakeGit records calls as "op arg arg" strings. fail maps an op name to
// the error it returns.
type fakeGit struct {
	calls     []string
	fail      map[string]error
	current   string
	worktrees []git.Worktree
}

func newFakeGit() *fakeGit {
	return &fakeGit{fail: map[string]error{}, current: "main"}
}

func (g *fakeGit) record(op string, args ...string) error {
	g.calls = append(g.calls, strings.TrimSpace(op+" "+strings.Join(args, " ")))
	return g.fail[op]
}

func (g *fakeGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	if err := g.record("current-branch", dir); err != nil {
		return "", err
	}
	return g.current, nil
}

func (g *fakeGit) CreateBranch(ctx context.Context, name, base, dir string) error {
	return g.record("create-branch", name, base)
}

func (g *fakeGit) AddWorktree(ctx context.Context, wtDir, branch, repoDir string) error {
	return g.record("add-worktree", wtDir, branch)
}

func (g *fakeGit) RemoveWorktree(ctx context.Context, wtDir, repoDir string) error {
	return g.record("remove-worktree", wtDir)
}

func (g *fakeGit) DeleteBranch(ctx context.Context, name, dir string, force bool) error {
	return g.record("delete-branch", name, fmt.Sprint(force))
}

func (g *fakeGit) SwitchOffBranch(ctx context.Context, branch, fallback, dir string) error {
	return g.record("switch-off", branch, fallback)
}

func (g *fakeGit) MergeBranch(ctx context.Context, base, head, dir string) error {
	return g.record("merge", base, head)
}

func (g *fakeGit) ListWorktrees(ctx context.Context, repoDir string) ([]git.Worktree, error) {
	if err := g.record("list-worktrees"); err != nil {
		return nil, err
	}
	return g.worktrees, nil
}

func (g *fakeGit) ops() []string {
	ops := make([]string, len(g.calls))
	for i, c := range g.calls {
		ops[i], _, _ = strings.Cut(c, " ")
	}
	return ops
}

type fakeProvisioner struct {
	copied   []string
	report   provision.Report
	scripts  []string
	env      []string
	setupErr error
}

func (p *fakeProvisioner) CopyFiles(repoRoot, worktree string, entries []string) provision.Report {
	p.copied = append(p.copied, entries...)
	return p.report
}

func (p *fakeProvisioner) RunSetup(ctx context.Context, script, dir string, env ...string) (string, error) {
	p.scripts = append(p.scripts, script)
	p.env = env
	return "", p.setupErr
}

type fakeResolver struct {
	root string
	err  error
}

func (r fakeResolver) ResolveRepositoryRoot(ctx context.Context, dir string) (string, error) {
	return r.root, r.err
}

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	engine *Engine
	store  *fakeStore
	git    *fakeGit
	prov   *fakeProvisioner
}

func newHarness(t *testing.T, tasks ...domain.Task) *harness {
	t.Helper()
	h := &harness{
		store: &fakeStore{board: domain.Board{Version: domain.BoardVersion, Tasks: tasks}},
		git:   newFakeGit(),
		prov:  &fakeProvisioner{},
	}
	ids := []string{"abc1234", "def5678", "ghi9012"}
	h.engine = New(Deps{
		Store:       h.store,
		Git:         h.git,
		Provisioner: h.prov,
		Resolver:    fakeResolver{root: "/repo"},
		Dir:         "/repo",
		Config:      &config.Config{BranchPrefix: "vd", TmpRoot: "/tmp/wt"},
		Now:         func() time.Time { return fixedNow },
		NewID: func(exists func(string) bool) (string, error) {
			for _, id := range ids {
				if !exists(id) {
					return id, nil
				}
			}
			return "", errors.New("out of ids")
		},
	})
	return h
}

func (h *harness) withProject(p *config.ProjectConfig) *harness {
	h.engine = h.engine.WithConfig(nil, p)
	return h
}

func (h *harness) exec(t *testing.T, cmd Command) Result {
	t.Helper()
	res, err := h.engine.Execute(context.Background(), cmd)
	require.NoError(t, err)
	return res
}

func (h *harness) task(t *testing.T, id string) domain.Task {
	t.Helper()
	task, err := h.store.board.Find(id)
	require.NoError(t, err)
	return task
}

func todoTask(id, title string) domain.Task {
	created := fixedNow.Add(-time.Hour)
	return domain.Task{ID: id, Title: title, Status: domain.StatusTodo, CreatedAt: created, UpdatedAt: created}
}

func startedTask(id, title string, status domain.Status) domain.Task {
	t := todoTask(id, title)
	t.Status = status
	t.Branch = "vd/task/" + id + "-x"
	t.WorktreePath = "/tmp/wt/vd-" + id + "-x"
	t.BaseBranch = "main"
	return t
}
