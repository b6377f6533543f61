package installer

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/fetch"
	"github.com/agentx-labs/plugin-installer/internal/pkgname"
	"github.com/agentx-labs/plugin-installer/internal/source"
)

// Acquirer stages a package archive in a scratch directory.
type Acquirer interface {
	Acquire(ctx context.Context, url string) (*fetch.Scratch, error)
}

// PackageInstaller installs an unpacked package into the runtime prefix.
type PackageInstaller interface {
	Install(ctx context.Context, target string, args ...string) error
	InstallNoDeps(ctx context.Context, target string, args ...string) error
}

// Registrar makes an installed plugin known to the agent daemon. packageDir
// is the unpacked package the plugin was installed from.
type Registrar interface {
	Register(ctx context.Context, plugin, packageDir string) error
}

// Settings holds the values that do not change between plugins.
type Settings struct {
	BlueprintID       string
	BlueprintsRootURL string
	// NoDeps installs packages without their dependencies.
	NoDeps bool
}

// Deps are the collaborators an Installer drives.
type Deps struct {
	Fetcher   Acquirer
	Pip       PackageInstaller
	Names     pkgname.Extractor
	Registrar Registrar
	Logger    zerolog.Logger
}

// Result describes one installed plugin.
type Result struct {
	// Plugin is the descriptor name.
	Plugin string
	// URL is the archive the plugin was installed from.
	URL string
	// PackageName is the distribution name the daemon registered.
	PackageName string
}

// Installer installs plugins one at a time.
type Installer struct {
	settings  Settings
	resolver  source.Resolver
	fetcher   Acquirer
	pip       PackageInstaller
	names     pkgname.Extractor
	registrar Registrar
	logger    zerolog.Logger
}

// New returns an Installer. Every collaborator in deps except Logger is required.
func New(settings Settings, deps Deps) (*Installer, error) {
	var missing []string
	if deps.Fetcher == nil {
		missing = append(missing, "fetcher")
	}
	if deps.Pip == nil {
		missing = append(missing, "pip")
	}
	if deps.Names == nil {
		missing = append(missing, "name extractor")
	}
	if deps.Registrar == nil {
		missing = append(missing, "registrar")
	}
	if len(missing) > 0 {
		return nil, errors.New("installer is missing: " + strings.Join(missing, ", "))
	}

	return &Installer{
		settings:  settings,
		resolver:  source.Resolver{BlueprintsRootURL: settings.BlueprintsRootURL},
		fetcher:   deps.Fetcher,
		pip:       deps.Pip,
		names:     deps.Names,
		registrar: deps.Registrar,
		logger:    deps.Logger.With().Str("component", "installer").Logger(),
	}, nil
}

// Install installs plugins in order. The first failure stops the run; the
// results of the plugins installed before it are returned with the error.
func (in *Installer) Install(ctx context.Context, plugins []descriptor.Plugin) ([]Result, error) {
	results := make([]Result, 0, len(plugins))
	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := in.InstallPlugin(ctx, p)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// InstallPlugin installs a single plugin and registers it with the daemon.
func (in *Installer) InstallPlugin(ctx context.Context, plugin descriptor.Plugin) (Result, error) {
	resolved, err := in.resolver.Resolve(in.settings.BlueprintID, plugin)
	if err != nil {
		return Result{}, err
	}
	args, err := resolved.Args()
	if err != nil {
		return Result{}, err
	}

	log := in.logger.With().Str("op", "install_plugin").Str("plugin", plugin.Name).Logger()
	log.Info().Msgf("Installing %s", plugin.Name)
	log.Debug().Str("url", resolved.URL).Msgf("Installing %s from %s", plugin.Name, resolved.URL)

	scratch, err := in.fetcher.Acquire(ctx, resolved.URL)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rmErr := scratch.Release(); rmErr != nil {
			log.Warn().Err(rmErr).Msg("Failed to remove scratch directory")
		}
	}()

	if in.settings.NoDeps {
		err = in.pip.InstallNoDeps(ctx, scratch.PackageDir, args...)
	} else {
		err = in.pip.Install(ctx, scratch.PackageDir, args...)
	}
	if err != nil {
		return Result{}, err
	}

	name, err := in.names.Extract(ctx, scratch.PackageDir)
	if err != nil {
		return Result{}, err
	}

	if err := in.registrar.Register(ctx, name, scratch.PackageDir); err != nil {
		return Result{}, err
	}

	log.Debug().Str("package", name).Msg("Plugin installed")
	return Result{Plugin: plugin.Name, URL: resolved.URL, PackageName: name}, nil
}
