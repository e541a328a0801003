// Package store persists the task board as a JSON document shared by every
// worktree of a repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/domain"
)

// RepoResolver maps a working directory to the canonical repository root.
type RepoResolver interface {
	ResolveRepositoryRoot(ctx context.Context, dir string) (string, error)
}

// Store reads and writes the board for the repository containing dir.
// It holds no board state of its own.
type Store struct {
	resolver    RepoResolver
	dir         string
	projectsDir string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithProjectsDir stores boards under dir instead of ~/.vibedove/projects.
func WithProjectsDir(dir string) Option {
	return func(s *Store) { s.projectsDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store for the repository containing dir.
func New(resolver RepoResolver, dir string, opts ...Option) *Store {
	s := &Store{
		resolver: resolver,
		dir:      dir,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the board file location for the store's repository.
func (s *Store) Path(ctx context.Context) (string, error) {
	root, err := s.resolver.ResolveRepositoryRoot(ctx, s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository: %w", err)
	}
	if s.projectsDir != "" {
		return filepath.Join(s.projectsDir, config.SanitizeKey(root), config.BoardFile), nil
	}
	return config.ProjectFile(root, config.BoardFile)
}

// Load reads the board. A missing board is created empty and saved. An
// unreadable or invalid board is moved aside to board.json.corrupt-<unix>
// and replaced by an empty one. A board written by a newer version is an
// error and is left untouched.
func (s *Store) Load(ctx context.Context) (domain.Board, error) {
	path, err := s.Path(ctx)
	if err != nil {
		return domain.Board{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("board not found, creating", "path", path)
		return s.initialize(ctx)
	}
	if err != nil {
		s.logger.Error("board unreadable", "path", path, "error", err)
		s.quarantine(path)
		return s.initialize(ctx)
	}

	board, err := Decode(data)
	if errors.Is(err, ErrUnsupportedVersion) {
		return domain.Board{}, err
	}
	if err != nil {
		s.logger.Error("board invalid", "path", path, "error", err)
		s.quarantine(path)
		return s.initialize(ctx)
	}

	s.warnDuplicates(board)
	return board, nil
}

// Save writes the full board atomically as pretty-printed JSON.
func (s *Store) Save(ctx context.Context, board domain.Board) error {
	path, err := s.Path(ctx)
	if err != nil {
		return err
	}

	data, err := Encode(board)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write board %s: %w", path, err)
	}

	s.logger.Debug("board saved", "path", path, "tasks", len(board.Tasks))
	return nil
}

func (s *Store) initialize(ctx context.Context) (domain.Board, error) {
	board := domain.NewBoard()
	if err := s.Save(ctx, board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

func (s *Store) quarantine(path string) {
	backup := fmt.Sprintf("%s.corrupt-%d", path, s.now().Unix())
	if err := os.Rename(path, backup); err != nil {
		s.logger.Warn("failed to move invalid board aside", "path", path, "error", err)
		return
	}
	s.logger.Warn("moved invalid board aside", "backup", backup)
}

func (s *Store) warnDuplicates(board domain.Board) {
	seen := make(map[string]bool, len(board.Tasks))
	for _, t := range board.Tasks {
		if seen[t.ID] {
			s.logger.Warn("duplicate task id on board", "taskID", t.ID)
		}
		seen[t.ID] = true
	}
}
