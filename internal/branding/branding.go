// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is baked into the binary with //go:embed; editing it and
// rebuilding is enough to rename the tool, its home directory, and the
// environment variable prefix it reads configuration from.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	AgentCLI    string `yaml:"agent_cli"`
	UserAgent   string `yaml:"user_agent"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "plugin-installer",
			DisplayName: "Plugin Installer",
			Description: "Installs blueprint plugins into an agent virtualenv",
			HomeDir:     ".plugin-installer",
			EnvPrefix:   "PLUGIN_INSTALLER",
			GoModule:    "github.com/agentx-labs/plugin-installer",
			AgentCLI:    "cloudify-agent",
			UserAgent:   "plugin-installer",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "plugin-installer").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".plugin-installer").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PLUGIN_INSTALLER").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// AgentCLI returns the default executable name of the agent daemon CLI
// living in the virtualenv's bin directory.
func AgentCLI() string { load(); return defaults.AgentCLI }

// UserAgent returns the User-Agent sent with archive downloads.
func UserAgent() string { load(); return defaults.UserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("virtualenv") → "PLUGIN_INSTALLER_VIRTUALENV".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
