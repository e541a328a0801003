// Package cli implements the vd command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/services/git"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Options configures the root command. Zero values use the process
// defaults: os.Stdout, os.Stderr, the git binary and the working directory.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Runner git.CommandRunner
	Dir    string
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Runner == nil {
		o.Runner = git.NewExecRunner()
	}
	return o
}

// NewRootCmd builds the vd command tree.
func NewRootCmd(opts Options) *cobra.Command {
	opts = opts.withDefaults()
	cli := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "vd",
		Short: "Personal kanban board for git branches and worktrees",
		Long: `vd tracks development tasks on a kanban board and maps each started
task to its own git branch and worktree.

Tasks move To Do → In Progress → In Review → Done. Cancelled is reachable
from any open state. Starting a task creates the branch and worktree;
finishing, merging, cancelling or deleting it cleans them up.

Run vd without arguments for the board. When stdout is not a terminal it
prints the task list instead.

Quick start:
  vd new "Fix login bug"   Create a task
  vd start <id>            Create its branch and worktree
  vd review <id>           Send it to review
  vd merge <id>            Merge into the base branch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cli.opts.Stdout) {
				return cli.runTUI(cmd.Context())
			}
			return cli.list(cmd.Context(), listOptions{output: outputTable})
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetIn(opts.Stdin)

	root.PersistentFlags().StringVarP(&cli.dir, "dir", "C", opts.Dir, "repository directory (default is the working directory)")

	root.AddCommand(
		cli.newNewCmd(),
		cli.newListCmd(),
		cli.newShowCmd(),
		cli.newEditCmd(),
		cli.newRmCmd(),
		cli.newConfigCmd(),
		cli.newDoctorCmd(),
		cli.newProjectsCmd(),
		newVersionCmd(),
	)
	for _, spec := range lifecycleCommands {
		root.AddCommand(cli.newLifecycleCmd(spec))
	}
	return root
}

// Execute runs the vd command line and returns the process exit code.
func Execute() int {
	root := NewRootCmd(Options{})
	return exitCode(root.ErrOrStderr(), root.Execute())
}

// exitCode reports err on w and maps it to a process exit status. A
// declined confirmation is not a failure.
func exitCode(w io.Writer, err error) int {
	if err == nil || errors.Is(err, domain.ErrUserCanceled) {
		return 0
	}
	printError(w, err)
	return 1
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vd %s\n", Version)
		},
	}
}
