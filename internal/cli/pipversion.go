package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/plugin-installer/internal/pip"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

func init() {
	rootCmd.AddCommand(pipVersionCmd)
}

var pipVersionCmd = &cobra.Command{
	Use:   "pip-version [version]",
	Short: "Show a pip version's components and the unpack routine it selects",
	Long: `Parse the given pip version, or the version of the virtualenv's pip when none
is given, and print its components and capability tier.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw string
		if len(args) == 1 {
			raw = args[0]
		} else {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			venv, err := runtime.NewVirtualenv(cfg.Virtualenv)
			if err != nil {
				return err
			}
			d := pip.Detector{Pip: pip.New(venv, runtime.NewExecRunner(logger)), Override: cfg.PipVersion}
			if raw, err = d.Version(cmd.Context()); err != nil {
				return err
			}
		}

		v, err := pip.ParseVersion(raw)
		if err != nil {
			return err
		}
		tier, err := pip.TierOf(raw)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "version: %s\n", raw)
		fmt.Fprintf(out, "major:   %s\n", v.Major)
		fmt.Fprintf(out, "minor:   %s\n", v.Minor)
		fmt.Fprintf(out, "micro:   %s\n", v.Micro)
		fmt.Fprintf(out, "tier:    %s\n", tier)
		return nil
	},
}
