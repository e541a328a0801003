package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/vibedove/vibedove/internal/app"
)

// runTUI opens the interactive board for the current repository.
func (c *cli) runTUI(ctx context.Context) error {
	rt, err := c.open(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []app.Option{
		app.WithReload(rt.reload),
		app.WithConfigPath(rt.configPath),
		app.WithLogger(rt.logger),
	}
	changes, err := rt.store.Watch(ctx)
	if err != nil {
		rt.logger.Warn("board watcher unavailable", "error", err)
	} else {
		opts = append(opts, app.WithChanges(changes))
	}

	rt.logger.Info("starting board", "repo", rt.repoRoot)
	p := tea.NewProgram(app.New(rt.engine, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
