package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentx-labs/plugin-installer/internal/branding"
	"github.com/agentx-labs/plugin-installer/internal/config"
	"github.com/agentx-labs/plugin-installer/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs blueprint plugins into an agent's virtualenv and
registers them with the agent daemon.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load(configFile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	flags.String("virtualenv", "", "Runtime prefix the plugins are installed into")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console, json)")

	for key, flag := range map[string]string{
		config.KeyVirtualenv: "virtualenv",
		config.KeyLogLevel:   "log-level",
		config.KeyLogFormat:  "log-format",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// loadConfig resolves the loaded settings and a logger writing to stderr.
func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Current()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}
