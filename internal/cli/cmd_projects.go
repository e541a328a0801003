package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/config"
)

func (c *cli) newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List or forget repositories that have a board",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List known repositories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := config.LoadProjectsRegistry()
			if err != nil {
				return err
			}
			if len(reg.Projects) == 0 {
				fmt.Fprintln(c.opts.Stdout, "No projects yet. Run vd inside a git repository to add one.")
				return nil
			}
			tw := tabwriter.NewWriter(c.opts.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLAST OPENED\tPATH")
			for _, p := range reg.Projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.LastOpened.Local().Format(time.DateTime), p.Path)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Forget a repository (its board file is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := config.LoadProjectsRegistry()
			if err != nil {
				return err
			}
			if err := reg.Remove(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := config.SaveProjectsRegistry(reg); err != nil {
				return err
			}
			fmt.Fprintf(c.opts.Stdout, "Removed %s\n", args[0])
			return nil
		},
	})

	return cmd
}
