package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/engine"
)

// lifecycleCommand describes one status-changing subcommand.
type lifecycleCommand struct {
	use     string
	aliases []string
	short   string
	long    string
	confirm string
	build   func(id string) engine.Command
}

var lifecycleCommands = []lifecycleCommand{
	{
		use:   "start",
		short: "Create the task's branch and worktree and move it to In Progress",
		long: `Create the task's branch and worktree and move it to In Progress.

The branch is <branchPrefix>/task/<id>-<slug>, created from the configured
base branch or the current one. Files listed in the project's copyFiles are
copied into the worktree and its setupScript runs there. Copy and setup
failures are reported but do not stop the task from starting.`,
		build: func(id string) engine.Command { return engine.Start{ID: id} },
	},
	{
		use:   "review",
		short: "Move an In Progress task to In Review",
		build: func(id string) engine.Command { return engine.Review{ID: id} },
	},
	{
		use:   "reopen",
		short: "Move an In Progress task back to To Do",
		build: func(id string) engine.Command { return engine.Reopen{ID: id} },
	},
	{
		use:     "done",
		aliases: []string{"complete"},
		short:   "Mark a task Done, removing its worktree but keeping the branch",
		build:   func(id string) engine.Command { return engine.Complete{ID: id} },
	},
	{
		use:   "merge",
		short: "Merge the task's branch into its base branch and mark it Done",
		long: `Merge the task's branch into its base branch and mark it Done.

On a conflict the merge is aborted, the task stays where it is and the
conflicting files are listed. After a clean merge the worktree is removed
and the branch deleted.`,
		build: func(id string) engine.Command { return engine.Merge{ID: id} },
	},
	{
		use:     "cancel",
		short:   "Cancel a task, discarding its worktree and branch",
		confirm: "Cancel %s and force-delete its branch?",
		build:   func(id string) engine.Command { return engine.Cancel{ID: id} },
	},
}

func (c *cli) newLifecycleCmd(spec lifecycleCommand) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     spec.use + " <id>",
		Aliases: spec.aliases,
		Short:   spec.short,
		Long:    spec.long,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec.confirm != "" && !yes {
				if err := c.confirm(fmt.Sprintf(spec.confirm, args[0])); err != nil {
					return err
				}
			}
			_, err := c.execute(cmd.Context(), spec.build(args[0]))
			return err
		},
	}
	if spec.confirm != "" {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	}
	return cmd
}
