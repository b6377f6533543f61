package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentx-labs/plugin-installer/internal/failure"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

// Mode selects how a plugin is made known to the daemon.
type Mode string

const (
	// ModeQueue registers with the daemon consuming a task queue.
	ModeQueue Mode = "queue"
	// ModeName registers with a named agent.
	ModeName Mode = "name"
	// ModeIncludes appends the plugin's task modules to the includes file.
	ModeIncludes Mode = "includes"
)

// Modes lists the accepted registration modes.
var Modes = []Mode{ModeQueue, ModeName, ModeIncludes}

// ParseMode validates s as a registration mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Modes {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown registration mode %q (expected queue, name or includes)", s)
}

// Config is the registration target.
type Config struct {
	Mode      Mode
	Queue     string
	AgentName string
	Workdir   string
	// AgentCLI is the agent executable name inside the runtime prefix.
	AgentCLI string
}

// Validate reports a missing routing key for the selected mode.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeQueue:
		if c.Queue == "" {
			return fmt.Errorf("registration mode %q requires a queue", c.Mode)
		}
	case ModeName:
		if c.AgentName == "" {
			return fmt.Errorf("registration mode %q requires an agent name", c.Mode)
		}
	case ModeIncludes:
		if c.Workdir == "" {
			return fmt.Errorf("registration mode %q requires a work directory", c.Mode)
		}
		return nil
	default:
		_, err := ParseMode(string(c.Mode))
		return err
	}
	if c.AgentCLI == "" {
		return fmt.Errorf("registration mode %q requires the agent CLI name", c.Mode)
	}
	return nil
}

// Registrar registers plugins according to its Config.
type Registrar struct {
	cfg    Config
	venv   *runtime.Virtualenv
	runner runtime.CommandRunner
	logger zerolog.Logger
}

// New validates cfg and returns a Registrar.
func New(cfg Config, venv *runtime.Virtualenv, runner runtime.CommandRunner, logger zerolog.Logger) (*Registrar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registrar{
		cfg:    cfg,
		venv:   venv,
		runner: runner,
		logger: logger.With().Str("component", "daemon").Logger(),
	}, nil
}

// Command returns the agent CLI invocation registering plugin. It is only
// meaningful for the queue and name modes.
func (r *Registrar) Command(plugin string) runtime.Command {
	target := "--queue=" + r.cfg.Queue
	if r.cfg.Mode == ModeName {
		target = "--name=" + r.cfg.AgentName
	}
	return r.venv.Command(r.cfg.AgentCLI, "daemon", "register", target, "--plugin="+plugin)
}

// Register makes plugin known to the daemon. In includes mode the task
// modules are read from packageDir, the unpacked package.
func (r *Registrar) Register(ctx context.Context, plugin, packageDir string) error {
	log := r.logger.With().Str("op", "register").Str("plugin", plugin).Str("mode", string(r.cfg.Mode)).Logger()

	if r.cfg.Mode == ModeIncludes {
		path := filepath.Join(r.cfg.Workdir, IncludesFile)
		modules, err := TaskModules(packageDir)
		if err == nil {
			err = UpdateIncludes(path, modules)
		}
		if err != nil {
			return &failure.NonRecoverableError{
				Msg: fmt.Sprintf("Failed to register plugin %s: %v", plugin, err),
				Err: errors.Join(failure.ErrRegistration, err),
			}
		}
		log.Debug().Str("file", path).Strs("modules", modules).Msg("Plugin added to includes")
		return nil
	}

	if _, err := runtime.RunChecked(ctx, r.runner, r.Command(plugin)); err != nil {
		return err
	}
	log.Debug().Msg("Plugin registered with daemon")
	return nil
}
