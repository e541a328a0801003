package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/engine"
)

// execute runs one engine command and prints its result line.
func (c *cli) execute(ctx context.Context, cmd engine.Command) (engine.Result, error) {
	rt, err := c.open(ctx)
	if err != nil {
		return engine.Result{}, err
	}
	res, err := rt.engine.Execute(ctx, cmd)
	if err != nil {
		return engine.Result{}, err
	}
	fmt.Fprintln(c.opts.Stdout, res.Message())
	return res, nil
}

func (c *cli) newNewCmd() *cobra.Command {
	var description string
	var start bool

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a task in To Do",
		Long: `Create a task in To Do. Multiple arguments are joined into the title.

Example:
  vd new "Fix login bug"
  vd new Fix login bug -d "Users get logged out after 5 minutes"
  vd new "Spike: cache layer" --start`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := c.execute(ctx, engine.Create{
				Title:       strings.Join(args, " "),
				Description: description,
			})
			if err != nil {
				return err
			}
			if start {
				_, err = c.execute(ctx, engine.Start{ID: res.Task.ID})
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().BoolVarP(&start, "start", "s", false, "start the task right away")
	return cmd
}

type listOptions struct {
	output   string
	statuses []string
	worktree bool
	search   string
	sort     string
	desc     bool
}

func (c *cli) newListCmd() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks in board order.

Example:
  vd list
  vd list --status progress --status review
  vd list --search login -o json
  vd list --sort updated --desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.list(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "only tasks with this status (repeatable)")
	cmd.Flags().BoolVarP(&opts.worktree, "worktree", "w", false, "only tasks with a worktree")
	cmd.Flags().StringVar(&opts.search, "search", "", "match title, ID or branch")
	cmd.Flags().StringVar(&opts.sort, "sort", string(domain.SortByBoard), "sort by board, created, updated or title")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "reverse the sort order")
	return cmd
}

func (c *cli) list(ctx context.Context, opts listOptions) error {
	if opts.output == "" {
		opts.output = outputTable
	}
	if err := validOutput(opts.output); err != nil {
		return err
	}

	filter := domain.NewFilter()
	for _, s := range opts.statuses {
		status, ok := domain.ParseStatus(s)
		if !ok {
			return fmt.Errorf("unknown status %q", s)
		}
		filter.Status[status] = true
	}
	filter.HasWorktree = opts.worktree
	filter.SearchQuery = opts.search

	field, ok := domain.ParseSortField(opts.sort)
	if !ok && opts.sort != "" {
		return fmt.Errorf("unknown sort field %q", opts.sort)
	}
	sort := &domain.Sort{Field: field}
	if opts.desc {
		sort.Order = domain.SortDesc
	}

	rt, err := c.open(ctx)
	if err != nil {
		return err
	}
	board, err := rt.engine.Board(ctx)
	if err != nil {
		return err
	}
	return printTasks(c.opts.Stdout, opts.output, sort.Apply(filter.Apply(board.Tasks)))
}

func (c *cli) newShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(output); err != nil {
				return err
			}
			rt, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			board, err := rt.engine.Board(cmd.Context())
			if err != nil {
				return err
			}
			task, err := board.Find(args[0])
			if err != nil {
				return err
			}
			return printTask(c.opts.Stdout, output, task)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}

func (c *cli) newEditCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Long: `Change a task's title or description. Either flag may be given; an
empty --description clears it.

Example:
  vd edit abc1234 --title "Fix login timeout"
  vd edit abc1234 -d ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet := cmd.Flags().Changed("title")
			descSet := cmd.Flags().Changed("description")
			if !titleSet && !descSet {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}
			if titleSet {
				if _, err := c.execute(cmd.Context(), engine.EditTitle{ID: args[0], Title: title}); err != nil {
					return err
				}
			}
			if descSet {
				if _, err := c.execute(cmd.Context(), engine.EditDescription{ID: args[0], Description: description}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (c *cli) newRmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task, its worktree and its branch",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if err := c.confirm(fmt.Sprintf("Delete %s with its worktree and branch?", args[0])); err != nil {
					return err
				}
			}
			_, err := c.execute(cmd.Context(), engine.Delete{ID: args[0]})
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on stdin; anything but y or yes is no.
// confirm asks question on stdin. Anything but y or yes prints Aborted. and
// returns domain.ErrUserCanceled.
func (c *cli) confirm(question string) error {
	fmt.Fprintf(c.opts.Stdout, "%s [y/N] ", question)
	line, _ := bufio.NewReader(c.opts.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	fmt.Fprintln(c.opts.Stdout, "Aborted.")
	return domain.ErrUserCanceled
}
