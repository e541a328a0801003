// Package engine implements the task lifecycle: the transition table, the
// ordered git and filesystem side effects of each command, and persistence
// of the resulting board.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/naming"
	"github.com/vibedove/vibedove/internal/services/git"
	"github.com/vibedove/vibedove/internal/services/provision"
)

// Git is the subset of the git adapter the engine drives. All operations
// run against the repository root.
type Git interface {
	CurrentBranch(ctx context.Context, dir string) (string, error)
	CreateBranch(ctx context.Context, name, base, dir string) error
	AddWorktree(ctx context.Context, wtDir, branch, repoDir string) error
	RemoveWorktree(ctx context.Context, wtDir, repoDir string) error
	DeleteBranch(ctx context.Context, name, dir string, force bool) error
	SwitchOffBranch(ctx context.Context, branch, fallback, dir string) error
	MergeBranch(ctx context.Context, base, head, dir string) error
	ListWorktrees(ctx context.Context, repoDir string) ([]git.Worktree, error)
}

// BoardStore loads and persists the board.
type BoardStore interface {
	Load(ctx context.Context) (domain.Board, error)
	Save(ctx context.Context, board domain.Board) error
}

// RepoResolver maps a working directory to the main repository root.
type RepoResolver interface {
	ResolveRepositoryRoot(ctx context.Context, dir string) (string, error)
}

// Provisioner seeds new worktrees.
type Provisioner interface {
	CopyFiles(repoRoot, worktree string, entries []string) provision.Report
	RunSetup(ctx context.Context, script, dir string, env ...string) (string, error)
}

// Deps wires an Engine. Store, Git, Provisioner and Resolver are required.
type Deps struct {
	Store       BoardStore
	Git         Git
	Provisioner Provisioner
	Resolver    RepoResolver
	// Dir is the working directory the repository is resolved from.
	Dir string

	Config  *config.Config
	Project *config.ProjectConfig

	Logger *slog.Logger
	Now    func() time.Time
	NewID  func(exists func(string) bool) (string, error)
}

// Engine executes commands against the board. It holds no board state of
// its own; every call loads, transforms and saves.
type Engine struct {
	store    BoardStore
	git      Git
	prov     Provisioner
	resolver RepoResolver
	dir      string
	cfg      *config.Config
	project  *config.ProjectConfig
	logger   *slog.Logger
	now      func() time.Time
	newID    func(exists func(string) bool) (string, error)
	dirExist func(path string) bool
}

// New creates an Engine from deps, filling optional fields with defaults.
func New(deps Deps) *Engine {
	e := &Engine{
		store:    deps.Store,
		git:      deps.Git,
		prov:     deps.Provisioner,
		resolver: deps.Resolver,
		dir:      deps.Dir,
		cfg:      deps.Config,
		project:  deps.Project,
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
		dirExist: dirExists,
	}
	if e.cfg == nil {
		e.cfg = config.DefaultConfig()
	}
	if e.project == nil {
		e.project = config.DefaultProjectConfig()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = naming.NewID
	}
	return e
}

// WithConfig returns a copy of the engine using the given settings.
func (e *Engine) WithConfig(cfg *config.Config, project *config.ProjectConfig) *Engine {
	clone := *e
	if cfg != nil {
		clone.cfg = cfg
	}
	if project != nil {
		clone.project = project
	}
	return &clone
}

// Config returns the global settings in use.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Board loads the current board without changing it.
func (e *Engine) Board(ctx context.Context) (domain.Board, error) {
	board, err := e.store.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load board: %w", err)
	}
	return board, nil
}

// Result is the outcome of a successful command.
type Result struct {
	Board domain.Board
	// Task is the created or updated task; for Delete, the removed one.
	Task domain.Task
	// Notes lists advisory step failures that did not block the command.
	Notes []string
	// Removed is set when the task is no longer on the board.
	Removed bool

	summary string
}

// Message renders the one-line status text for the result, followed by any
// advisory notes.
func (r Result) Message() string {
	if len(r.Notes) == 0 {
		return r.summary
	}
	return r.summary + " (" + strings.Join(r.Notes, "; ") + ")"
}

// Execute runs cmd: load the board, check the transition, run side effects
// under their policies, then save. On error the board is unchanged.
func (e *Engine) Execute(ctx context.Context, cmd Command) (Result, error) {
	log := e.logger.With("op", uuid.NewString(), "command", string(cmd.Kind()))
	if id := cmd.TaskID(); id != "" {
		log = log.With("taskID", id)
	}

	board, err := e.store.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load board: %w", err)
	}

	if c, ok := cmd.(Create); ok {
		return e.create(ctx, log, board, c)
	}

	task, err := board.Find(cmd.TaskID())
	if err != nil {
		return Result{}, err
	}
	to, err := checkTransition(task, cmd.Kind())
	if err != nil {
		log.Warn("transition rejected", "from", task.Status)
		return Result{}, err
	}

	switch c := cmd.(type) {
	case Start:
		return e.start(ctx, log, board, task, to)
	case Review:
		task.Status = to
		return e.commit(ctx, log, board, task, nil, fmt.Sprintf("Moved %s to %s", task.ID, to))
	case Reopen:
		task.Status = to
		return e.commit(ctx, log, board, task, nil, fmt.Sprintf("Moved %s back to %s", task.ID, to))
	case Complete:
		return e.complete(ctx, log, board, task, to)
	case Merge:
		return e.merge(ctx, log, board, task, to)
	case Cancel:
		return e.cancel(ctx, log, board, task, to)
	case Delete:
		return e.remove(ctx, log, board, task)
	case EditTitle:
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return Result{}, domain.ErrEmptyTitle
		}
		task.Title = title
		return e.commit(ctx, log, board, task, nil, fmt.Sprintf("Renamed %s", task.ID))
	case EditDescription:
		task.Description = strings.TrimSpace(c.Description)
		return e.commit(ctx, log, board, task, nil, fmt.Sprintf("Updated description of %s", task.ID))
	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

func (e *Engine) create(ctx context.Context, log *slog.Logger, board domain.Board, c Create) (Result, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return Result{}, domain.ErrEmptyTitle
	}
	id, err := e.newID(board.HasID)
	if err != nil {
		return Result{}, err
	}
	now := e.now().UTC()
	task := domain.Task{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(c.Description),
		Status:      domain.StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	next := board.Append(task)
	if err := e.store.Save(ctx, next); err != nil {
		return Result{}, fmt.Errorf("save board: %w", err)
	}
	log.Info("task created", "taskID", id)
	return Result{Board: next, Task: task, summary: fmt.Sprintf("Created %s", id)}, nil
}

func (e *Engine) start(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task, to domain.Status) (Result, error) {
	repoRoot, err := e.repoRoot(ctx)
	if err != nil {
		return Result{}, err
	}

	prefix := e.cfg.BranchPrefix
	if prefix == "" {
		prefix = config.DefaultConfig().BranchPrefix
	}
	slug := naming.Slugify(task.Title)

	// A reopened task keeps its branch, worktree and base; starting it
	// again resumes on them.
	branch := task.Branch
	if branch == "" {
		branch = naming.BranchName(prefix, task.ID, slug)
	}
	if err := naming.ValidateBranchName(branch); err != nil {
		return Result{}, &domain.PreconditionError{TaskID: task.ID, Reason: err.Error()}
	}

	base := task.BaseBranch
	if base == "" {
		base = e.cfg.DefaultBaseBranch
	}
	if base == "" {
		base, err = e.git.CurrentBranch(ctx, repoRoot)
		if err != nil {
			return Result{}, fmt.Errorf("resolve base branch: %w", err)
		}
	}
	wtDir := task.WorktreePath
	if wtDir == "" {
		wtDir = filepath.Join(config.ResolveTmpRoot(e.cfg), naming.WorktreeDirName(prefix, task.ID, slug))
	}

	live := false
	if task.HasWorktree() {
		if live, err = e.worktreeLive(ctx, wtDir, repoRoot); err != nil {
			return Result{}, err
		}
	}

	steps := []step{{
		name:   "create branch",
		policy: Blocking,
		run: func(ctx context.Context) error {
			return e.git.CreateBranch(ctx, branch, base, repoRoot)
		},
	}}
	summary := fmt.Sprintf("Started %s on %s", task.ID, branch)
	if live {
		log.Info("resuming existing worktree", "path", wtDir)
		summary = fmt.Sprintf("Resumed %s on %s", task.ID, branch)
	} else {
		if task.HasWorktree() {
			steps = append(steps, e.removeWorktreeStep(wtDir, repoRoot))
		}
		steps = append(steps, step{
			name:   "add worktree",
			policy: Blocking,
			run: func(ctx context.Context) error {
				return e.git.AddWorktree(ctx, wtDir, branch, repoRoot)
			},
		})
		steps = append(steps, e.provisionSteps(task, branch, base, wtDir, repoRoot)...)
	}

	notes, err := runSteps(ctx, log, steps)
	if err != nil {
		return Result{}, err
	}

	task.Status = to
	task.Branch = branch
	task.WorktreePath = wtDir
	task.BaseBranch = base
	return e.commit(ctx, log, board, task, notes, summary)
}

// worktreeLive reports whether wtDir is a worktree git still tracks and whose
// directory is present.
func (e *Engine) worktreeLive(ctx context.Context, wtDir, repoRoot string) (bool, error) {
	if !e.dirExist(wtDir) {
		return false, nil
	}
	worktrees, err := e.git.ListWorktrees(ctx, repoRoot)
	if err != nil {
		return false, err
	}
	for _, wt := range worktrees {
		if samePath(wt.Path, wtDir) {
			return true, nil
		}
	}
	return false, nil
}

// provisionSteps seeds a freshly added worktree.
func (e *Engine) provisionSteps(task domain.Task, branch, base, wtDir, repoRoot string) []step {
	var steps []step
	if entries := e.project.CopyFiles; len(entries) > 0 {
		steps = append(steps, step{
			name:   "copy files",
			policy: Advisory,
			run: func(ctx context.Context) error {
				report := e.prov.CopyFiles(repoRoot, wtDir, entries)
				if !report.OK() {
					return errors.New(report.Summary())
				}
				return nil
			},
			note: func(err error) string { return err.Error() },
		})
	}
	if script := strings.TrimSpace(e.project.SetupScript); script != "" {
		env := []string{
			"VIBEDOVE_TASK_ID=" + task.ID,
			"VIBEDOVE_TASK_TITLE=" + task.Title,
			"VIBEDOVE_BRANCH=" + branch,
			"VIBEDOVE_BASE_BRANCH=" + base,
			"VIBEDOVE_REPO_ROOT=" + repoRoot,
			"VIBEDOVE_WORKTREE=" + wtDir,
		}
		steps = append(steps, step{
			name:   "setup script",
			policy: Advisory,
			run: func(ctx context.Context) error {
				_, err := e.prov.RunSetup(ctx, script, wtDir, env...)
				return err
			},
		})
	}
	return steps
}

func (e *Engine) complete(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task, to domain.Status) (Result, error) {
	var steps []step
	if task.HasWorktree() {
		repoRoot, err := e.repoRoot(ctx)
		if err != nil {
			return Result{}, err
		}
		steps = append(steps, e.removeWorktreeStep(task.WorktreePath, repoRoot))
	}
	notes, err := runSteps(ctx, log, steps)
	if err != nil {
		return Result{}, err
	}

	task.Status = to
	task.WorktreePath = ""
	return e.commit(ctx, log, board, task, notes, fmt.Sprintf("Marked %s as %s", task.ID, to))
}

func (e *Engine) merge(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task, to domain.Status) (Result, error) {
	if !task.HasBranch() {
		return Result{}, &domain.PreconditionError{TaskID: task.ID, Reason: "no branch to merge"}
	}
	if task.BaseBranch == "" {
		return Result{}, &domain.PreconditionError{TaskID: task.ID, Reason: "no base branch recorded"}
	}
	repoRoot, err := e.repoRoot(ctx)
	if err != nil {
		return Result{}, err
	}

	steps := []step{{
		name:   "merge",
		policy: Blocking,
		run: func(ctx context.Context) error {
			return e.git.MergeBranch(ctx, task.BaseBranch, task.Branch, repoRoot)
		},
	}}
	if task.HasWorktree() {
		steps = append(steps, e.removeWorktreeStep(task.WorktreePath, repoRoot))
	}
	steps = append(steps,
		e.switchOffStep(task.Branch, task.BaseBranch, repoRoot),
		// The merge into base succeeded; -d would judge mergedness against
		// whatever the root has checked out.
		e.deleteBranchStep(task.Branch, repoRoot, true),
	)

	notes, err := runSteps(ctx, log, steps)
	if err != nil {
		return Result{}, err
	}

	summary := fmt.Sprintf("Merged %s into %s", task.Branch, task.BaseBranch)
	task.Status = to
	task.WorktreePath = ""
	task.Branch = ""
	return e.commit(ctx, log, board, task, notes, summary)
}

func (e *Engine) cancel(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task, to domain.Status) (Result, error) {
	steps, err := e.reclaimSteps(ctx, task, true)
	if err != nil {
		return Result{}, err
	}
	notes, err := runSteps(ctx, log, steps)
	if err != nil {
		return Result{}, err
	}

	task.Status = to
	task.WorktreePath = ""
	task.Branch = ""
	return e.commit(ctx, log, board, task, notes, fmt.Sprintf("Cancelled %s", task.ID))
}

func (e *Engine) remove(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task) (Result, error) {
	steps, err := e.reclaimSteps(ctx, task, false)
	if err != nil {
		return Result{}, err
	}
	notes, err := runSteps(ctx, log, steps)
	if err != nil {
		return Result{}, err
	}

	next := board.Without(task.ID)
	if err := e.store.Save(ctx, next); err != nil {
		return Result{}, fmt.Errorf("save board: %w", err)
	}
	log.Info("task deleted", "notes", len(notes))
	return Result{
		Board:   next,
		Task:    task,
		Notes:   notes,
		Removed: true,
		summary: fmt.Sprintf("Deleted %s", task.ID),
	}, nil
}

// reclaimSteps returns the advisory steps that release a task's worktree
// and branch. switchOff moves the repository off the branch first.
func (e *Engine) reclaimSteps(ctx context.Context, task domain.Task, switchOff bool) ([]step, error) {
	if !task.HasWorktree() && !task.HasBranch() {
		return nil, nil
	}
	repoRoot, err := e.repoRoot(ctx)
	if err != nil {
		return nil, err
	}

	var steps []step
	if task.HasWorktree() {
		steps = append(steps, e.removeWorktreeStep(task.WorktreePath, repoRoot))
	}
	if task.HasBranch() {
		if switchOff {
			steps = append(steps, e.switchOffStep(task.Branch, task.BaseBranch, repoRoot))
		}
		steps = append(steps, e.deleteBranchStep(task.Branch, repoRoot, true))
	}
	return steps, nil
}

func (e *Engine) removeWorktreeStep(wtDir, repoRoot string) step {
	return step{
		name:   "remove worktree",
		policy: Advisory,
		run: func(ctx context.Context) error {
			return e.git.RemoveWorktree(ctx, wtDir, repoRoot)
		},
		note: func(err error) string {
			return fmt.Sprintf("worktree %s not removed: %v", wtDir, err)
		},
	}
}

func (e *Engine) switchOffStep(branch, fallback, repoRoot string) step {
	return step{
		name:   "switch off branch",
		policy: Advisory,
		run: func(ctx context.Context) error {
			return e.git.SwitchOffBranch(ctx, branch, fallback, repoRoot)
		},
		note: func(err error) string {
			return fmt.Sprintf("could not switch off %s: %v", branch, err)
		},
	}
}

func (e *Engine) deleteBranchStep(branch, repoRoot string, force bool) step {
	return step{
		name:   "delete branch",
		policy: Advisory,
		run: func(ctx context.Context) error {
			return e.git.DeleteBranch(ctx, branch, repoRoot, force)
		},
		note: func(err error) string {
			return fmt.Sprintf("branch %s not deleted: %v", branch, err)
		},
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

func (e *Engine) repoRoot(ctx context.Context) (string, error) {
	root, err := e.resolver.ResolveRepositoryRoot(ctx, e.dir)
	if err != nil {
		return "", fmt.Errorf("resolve repository: %w", err)
	}
	return root, nil
}

// commit stamps task, writes it into board and saves.
func (e *Engine) commit(ctx context.Context, log *slog.Logger, board domain.Board, task domain.Task, notes []string, summary string) (Result, error) {
	task = task.Touch(e.now())
	next := board.WithTask(task)
	if err := e.store.Save(ctx, next); err != nil {
		return Result{}, fmt.Errorf("save board: %w", err)
	}
	log.Info("task updated", "status", task.Status, "notes", len(notes))
	return Result{Board: next, Task: task, Notes: notes, summary: summary}, nil
}
