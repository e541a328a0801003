package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/naming"
)

// configView is the merged settings as printed by `vd config show`.
type configView struct {
	ConfigPath        string   `json:"configPath" yaml:"configPath"`
	ProjectPath       string   `json:"projectPath" yaml:"projectPath"`
	BranchPrefix      string   `json:"branchPrefix" yaml:"branchPrefix"`
	DefaultBaseBranch string   `json:"defaultBaseBranch" yaml:"defaultBaseBranch"`
	TmpRoot           string   `json:"tmpRoot" yaml:"tmpRoot"`
	CopyFiles         []string `json:"copyFiles" yaml:"copyFiles"`
	SetupScript       string   `json:"setupScript,omitempty" yaml:"setupScript,omitempty"`
}

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			boardPath, err := rt.store.Path(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.opts.Stdout, "global:  %s\nproject: %s\nboard:   %s\n", rt.configPath, rt.projectPath, boardPath)
			return nil
		},
	})

	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == outputTable {
				output = outputJSON
			}
			if err := validOutput(output); err != nil {
				return err
			}
			rt, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			return encode(c.opts.Stdout, output, configView{
				ConfigPath:        rt.configPath,
				ProjectPath:       rt.projectPath,
				BranchPrefix:      rt.cfg.BranchPrefix,
				DefaultBaseBranch: rt.cfg.DefaultBaseBranch,
				TmpRoot:           config.ResolveTmpRoot(rt.cfg),
				CopyFiles:         []string(rt.project.CopyFiles),
				SetupScript:       rt.project.SetupScript,
			})
		},
	}
	show.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or yaml")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write default config files where none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.EnsureGlobal(rt.configPath); err != nil {
				return err
			}
			if err := config.EnsureProject(rt.projectPath); err != nil {
				return err
			}
			fmt.Fprintf(c.opts.Stdout, "Wrote %s\nWrote %s\n", rt.configPath, rt.projectPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that both config files parse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := config.LoadGlobalStrict(rt.configPath)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				fmt.Fprintf(c.opts.Stdout, "%s: not present, defaults apply\n", rt.configPath)
				cfg = rt.cfg
			case err != nil:
				return err
			}
			if err := naming.ValidateBranchName(naming.BranchName(cfg.BranchPrefix, "abc1234", "check")); err != nil {
				return fmt.Errorf("branchPrefix %q: %w", cfg.BranchPrefix, err)
			}
			if _, err := config.LoadProjectStrict(rt.projectPath); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(c.opts.Stdout, "%s: not present, defaults apply\n", rt.projectPath)
			} else if err != nil {
				return err
			}
			fmt.Fprintln(c.opts.Stdout, "Config OK")
			return nil
		},
	})

	return cmd
}
