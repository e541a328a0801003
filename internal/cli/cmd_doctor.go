package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/services/diagnostics"
)

func (c *cli) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the board against the repository's worktrees",
		Long: `Check the board against the repository's worktrees.

Reports tasks whose worktree directory is gone, worktrees git does not know
about, finished tasks that still hold a worktree and worktrees on task
branches that no task references. Exits non-zero when errors are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := c.open(ctx)
			if err != nil {
				return err
			}
			board, err := rt.engine.Board(ctx)
			if err != nil {
				return err
			}

			report := diagnostics.NewService(rt.git, rt.logger).Collect(ctx, rt.repoRoot, rt.cfg.BranchPrefix, board)
			fmt.Fprint(c.opts.Stdout, diagnostics.FormatReport(report))
			if n := len(report.Errors); n > 0 {
				return fmt.Errorf("doctor found %d problem(s)", n)
			}
			return nil
		},
	}
}
