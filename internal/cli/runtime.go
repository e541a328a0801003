package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/engine"
	"github.com/vibedove/vibedove/internal/logging"
	"github.com/vibedove/vibedove/internal/services/git"
	"github.com/vibedove/vibedove/internal/services/provision"
	"github.com/vibedove/vibedove/internal/store"
)

// cli carries the root options and flags shared by every subcommand.
type cli struct {
	opts Options
	dir  string
}

// runtime is everything a command needs for one repository.
type runtime struct {
	dir         string
	repoRoot    string
	configPath  string
	projectPath string
	cfg         *config.Config
	project     *config.ProjectConfig

	git    *git.Client
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

func (c *cli) workDir() (string, error) {
	if c.dir != "" {
		return c.dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}

// open resolves the repository, loads configuration, installs the file
// logger and wires the engine. Config parse errors are reported and the
// defaults are used.
func (c *cli) open(ctx context.Context) (*runtime, error) {
	dir, err := c.workDir()
	if err != nil {
		return nil, err
	}

	resolver := git.NewResolver(c.opts.Runner, nil)
	repoRoot, err := resolver.ResolveRepositoryRoot(ctx, dir)
	if err != nil {
		if logPath, pathErr := config.LogPath(""); pathErr == nil {
			logging.Setup(logPath).Error("failed to resolve repository", "dir", dir, "error", err)
		}
		return nil, err
	}

	logPath, err := config.LogPath(repoRoot)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(logPath)

	rt := &runtime{dir: dir, repoRoot: repoRoot, logger: logger}
	if err := rt.loadConfig(c); err != nil {
		return nil, err
	}

	rt.git = git.NewClient(c.opts.Runner, logger)
	rt.store = store.New(resolver, dir, store.WithLogger(logger))
	rt.engine = engine.New(engine.Deps{
		Store:       rt.store,
		Git:         rt.git,
		Provisioner: provision.New(logger),
		Resolver:    resolver,
		Dir:         dir,
		Config:      rt.cfg,
		Project:     rt.project,
		Logger:      logger,
	})

	registerProject(repoRoot, logger)
	return rt, nil
}

// loadConfig reads the global and project settings into rt.
func (rt *runtime) loadConfig(c *cli) error {
	var err error
	if rt.configPath, err = config.GlobalConfigPath(); err != nil {
		return err
	}
	if rt.projectPath, err = config.ProjectFile(rt.repoRoot, config.ProjectConfigFile); err != nil {
		return err
	}

	rt.cfg, err = config.LoadGlobal(rt.configPath)
	if err != nil {
		fmt.Fprintf(c.opts.Stderr, "warning: %v (using defaults)\n", err)
		rt.logger.Warn("global config unreadable", "path", rt.configPath, "error", err)
	}
	rt.project = config.LoadProject(rt.projectPath)
	return nil
}

// reload re-reads both config files; used by the board's reload key.
func (rt *runtime) reload() (*config.Config, *config.ProjectConfig, error) {
	cfg, err := config.LoadGlobal(rt.configPath)
	return cfg, config.LoadProject(rt.projectPath), err
}

// registerProject records the repository in the projects registry. Failures
// only get logged.
func registerProject(repoRoot string, logger *slog.Logger) {
	reg, err := config.LoadProjectsRegistry()
	if err != nil {
		logger.Warn("projects registry unreadable", "error", err)
		return
	}
	if _, err := reg.Register(repoRoot, time.Now()); err != nil {
		logger.Warn("failed to register project", "path", repoRoot, "error", err)
		return
	}
	if err := config.SaveProjectsRegistry(reg); err != nil {
		logger.Warn("failed to save projects registry", "error", err)
	}
}
