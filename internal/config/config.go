package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentx-labs/plugin-installer/internal/branding"
	"github.com/agentx-labs/plugin-installer/internal/daemon"
	"github.com/agentx-labs/plugin-installer/internal/logging"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys.
const (
	KeyVirtualenv        = "virtualenv"
	KeyBlueprintID       = "blueprint_id"
	KeyBlueprintsRootURL = "file_server_blueprints_root_url"
	KeyRegistrationMode  = "registration.mode"
	KeyQueue             = "registration.queue"
	KeyAgentName         = "registration.agent_name"
	KeyWorkdir           = "registration.workdir"
	KeyAgentCLI          = "agent_cli"
	KeyPipVersion        = "pip_version"
	KeyNoDeps            = "no_deps"
	KeyHTTPTimeout       = "http_timeout"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
)

var defaults = map[string]any{
	KeyRegistrationMode: string(daemon.ModeQueue),
	KeyAgentCLI:         branding.AgentCLI(),
	KeyNoDeps:           false,
	KeyHTTPTimeout:      "5m",
	KeyLogLevel:         "info",
	KeyLogFormat:        logging.FormatConsole,
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	keys := []string{
		KeyVirtualenv, KeyBlueprintID, KeyBlueprintsRootURL,
		KeyRegistrationMode, KeyQueue, KeyAgentName, KeyWorkdir,
		KeyAgentCLI, KeyPipVersion, KeyNoDeps, KeyHTTPTimeout,
		KeyLogLevel, KeyLogFormat,
	}
	sort.Strings(keys)
	return keys
}

// Dir returns the path to the config directory (~/.plugin-installer/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the default config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from path (or the default config file when
// path is empty) and the environment. A missing default file is not an error.
func Load(path string) error {
	explicit := path != ""
	if !explicit {
		path = FilePath()
	}

	viper.SetConfigFile(path)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	// The agent environment exports the prefix as VIRTUALENV.
	if err := viper.BindEnv(KeyVirtualenv, branding.EnvVar("VIRTUALENV"), "VIRTUALENV"); err != nil {
		return fmt.Errorf("binding %s: %w", KeyVirtualenv, err)
	}

	if err := viper.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the default config file.
func Set(key, value string) error {
	if !isKnown(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isKnown(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Config is the resolved installer configuration.
type Config struct {
	Virtualenv        string
	BlueprintID       string
	BlueprintsRootURL string
	Registration      daemon.Config
	PipVersion        string
	NoDeps            bool
	HTTPTimeout       time.Duration
	LogLevel          string
	LogFormat         string
}

// Current builds a Config from the loaded settings.
func Current() (Config, error) {
	mode, err := daemon.ParseMode(viper.GetString(KeyRegistrationMode))
	if err != nil {
		return Config{}, err
	}

	var timeout time.Duration
	if raw := strings.TrimSpace(viper.GetString(KeyHTTPTimeout)); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", KeyHTTPTimeout, err)
		}
	}

	return Config{
		Virtualenv:        strings.TrimSpace(viper.GetString(KeyVirtualenv)),
		BlueprintID:       viper.GetString(KeyBlueprintID),
		BlueprintsRootURL: viper.GetString(KeyBlueprintsRootURL),
		Registration: daemon.Config{
			Mode:      mode,
			Queue:     viper.GetString(KeyQueue),
			AgentName: viper.GetString(KeyAgentName),
			Workdir:   viper.GetString(KeyWorkdir),
			AgentCLI:  viper.GetString(KeyAgentCLI),
		},
		PipVersion:  viper.GetString(KeyPipVersion),
		NoDeps:      viper.GetBool(KeyNoDeps),
		HTTPTimeout: timeout,
		LogLevel:    viper.GetString(KeyLogLevel),
		LogFormat:   viper.GetString(KeyLogFormat),
	}, nil
}

// Validate reports every problem that would prevent an installation.
func (c Config) Validate() error {
	var errs []error
	if c.Virtualenv == "" {
		errs = append(errs, fmt.Errorf("%s is not configured (set %s or VIRTUALENV)",
			KeyVirtualenv, branding.EnvVar("VIRTUALENV")))
	}
	if err := c.Registration.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyHTTPTimeout))
	}
	return errors.Join(errs...)
}
