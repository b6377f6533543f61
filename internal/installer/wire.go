package installer

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentx-labs/plugin-installer/internal/config"
	"github.com/agentx-labs/plugin-installer/internal/daemon"
	"github.com/agentx-labs/plugin-installer/internal/fetch"
	"github.com/agentx-labs/plugin-installer/internal/pip"
	"github.com/agentx-labs/plugin-installer/internal/pkgname"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

// FromConfig builds an Installer for cfg whose commands run through runner.
// fetchOpts are applied after the options derived from cfg.
func FromConfig(cfg config.Config, runner runtime.CommandRunner, logger zerolog.Logger, fetchOpts ...fetch.Option) (*Installer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	venv, err := runtime.NewVirtualenv(cfg.Virtualenv)
	if err != nil {
		return nil, err
	}

	p := pip.New(venv, runner)
	detector := pip.Detector{Pip: p, Override: cfg.PipVersion}

	opts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		fetch.WithLegacyUnpacker(p),
		fetch.WithLogger(logger),
	}
	fetcher := fetch.New(detector.Tier, append(opts, fetchOpts...)...)

	registrar, err := daemon.New(cfg.Registration, venv, runner, logger)
	if err != nil {
		return nil, err
	}

	return New(Settings{
		BlueprintID:       cfg.BlueprintID,
		BlueprintsRootURL: cfg.BlueprintsRootURL,
		NoDeps:            cfg.NoDeps,
	}, Deps{
		Fetcher:   fetcher,
		Pip:       p,
		Names:     pkgname.Default(venv, runner),
		Registrar: registrar,
		Logger:    logger,
	})
}
