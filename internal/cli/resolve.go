package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/plugin-installer/internal/config"
	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/source"
)

var (
	resolveSource    string
	resolveBlueprint string
	resolveRoot      string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveSource, "source", "", "Plugin source: an archive URL or a name under the blueprint's plugins directory")
	resolveCmd.Flags().StringVar(&resolveBlueprint, "blueprint", "", "Blueprint id (default from config)")
	resolveCmd.Flags().StringVar(&resolveRoot, "root", "", "File server blueprints root URL (default from config)")
	_ = resolveCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve --source <source>",
	Short: "Print the archive URL a plugin source resolves to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		blueprint := resolveBlueprint
		if blueprint == "" {
			blueprint = config.Get(config.KeyBlueprintID)
		}
		root := resolveRoot
		if root == "" {
			root = config.Get(config.KeyBlueprintsRootURL)
		}

		res, err := source.Resolver{BlueprintsRootURL: root}.Resolve(blueprint, descriptor.Plugin{Source: resolveSource})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
		return nil
	},
}
