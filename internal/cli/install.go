package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/installer"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

var (
	installFile      string
	installName      string
	installSource    string
	installArgs      string
	installBlueprint string
	installNoDeps    bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install plugins into the virtualenv and register them with the daemon",
	Long: `Install the plugins listed in a descriptor file, or a single plugin given by
--source, into the configured virtualenv. Plugins are installed in order and the
first failure stops the run.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installFile, "file", "f", "", "Plugin descriptor file (YAML or JSON)")
	installCmd.Flags().StringVar(&installName, "name", "", "Plugin name (with --source)")
	installCmd.Flags().StringVar(&installSource, "source", "", "Plugin source: an http(s) URL or a name below the blueprint's plugins directory")
	installCmd.Flags().StringVar(&installArgs, "args", "", "Extra arguments passed to pip install")
	installCmd.Flags().StringVar(&installBlueprint, "blueprint", "", "Blueprint id (overrides config and descriptor file)")
	installCmd.Flags().BoolVar(&installNoDeps, "no-deps", false, "Install plugins without their dependencies")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	plugins, fileBlueprint, err := installPlugins()
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	switch {
	case installBlueprint != "":
		cfg.BlueprintID = installBlueprint
	case fileBlueprint != "":
		cfg.BlueprintID = fileBlueprint
	}
	if installNoDeps {
		cfg.NoDeps = true
	}

	in, err := installer.FromConfig(cfg, runtime.NewExecRunner(logger), logger)
	if err != nil {
		return err
	}

	results, err := in.Install(cmd.Context(), plugins)
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s as %s\n", r.Plugin, r.PackageName)
	}
	return err
}

// installPlugins returns the plugins selected by the install flags and the
// blueprint id the descriptor file declares, if any.
func installPlugins() ([]descriptor.Plugin, string, error) {
	if installFile != "" && installSource != "" {
		return nil, "", fmt.Errorf("--file and --source are mutually exclusive")
	}

	if installFile != "" {
		f, err := descriptor.LoadFile(installFile)
		if err != nil {
			return nil, "", err
		}
		if len(f.Plugins) == 0 {
			return nil, "", fmt.Errorf("no plugins listed in %s", installFile)
		}
		return f.Plugins, f.BlueprintID, nil
	}

	if strings.TrimSpace(installSource) == "" {
		return nil, "", fmt.Errorf("either --file or --source is required")
	}
	name := installName
	if name == "" {
		name = installSource
	}
	return []descriptor.Plugin{{Name: name, Source: installSource, InstallArguments: installArgs}}, "", nil
}
