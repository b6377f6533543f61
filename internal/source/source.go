// Package source turns a plugin descriptor into the absolute URL its package
// archive is fetched from.
package source

import (
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/failure"
)

// schemeSeparator splits a URL scheme from the rest of the source.
const schemeSeparator = "://"

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// Resolved is a scheme-validated absolute URL plus the arguments forwarded
// to the package manager.
type Resolved struct {
	URL         string
	InstallArgs string
}

// Resolver composes relative sources with the file server's blueprints root.
type Resolver struct {
	// BlueprintsRootURL is the file server URL holding one directory per blueprint.
	BlueprintsRootURL string
}

// Resolve returns the archive URL for plugin within blueprintID.
//
// Sources carrying a scheme are returned unchanged when the scheme is http or
// https. Anything else is a path below <root>/<blueprint>/plugins and gets a
// .zip suffix.
func (r Resolver) Resolve(blueprintID string, plugin descriptor.Plugin) (Resolved, error) {
	if !plugin.HasSource() {
		return Resolved{}, failure.New(failure.ErrMissingSource,
			"Plugin %q has no source: a url or a path relative to the blueprint's plugins directory is required", plugin.Name)
	}

	src := strings.TrimSpace(plugin.Source)
	res := Resolved{InstallArgs: strings.TrimSpace(plugin.InstallArguments)}

	if strings.Contains(src, schemeSeparator) {
		scheme, _, _ := strings.Cut(src, schemeSeparator)
		if !allowedSchemes[scheme] {
			return Resolved{}, failure.New(failure.ErrInvalidScheme, "Invalid schema: %s", scheme)
		}
		res.URL = src
		return res, nil
	}

	root := strings.TrimSpace(r.BlueprintsRootURL)
	if scheme, _, ok := strings.Cut(root, schemeSeparator); !ok || !allowedSchemes[scheme] {
		return Resolved{}, failure.New(failure.ErrInvalidScheme,
			"Cannot resolve plugin source %q: blueprints root url %q is not an http or https url", src, root)
	}
	if strings.TrimSpace(blueprintID) == "" {
		return Resolved{}, failure.New(failure.ErrMissingSource,
			"Cannot resolve plugin source %q: no blueprint id is set", src)
	}

	res.URL = BlueprintPluginsURL(root, blueprintID) + "/" + src + ".zip"
	return res, nil
}

// Args splits the install arguments the way a POSIX shell would, so quoted
// values reach pip as single arguments.
func (r Resolved) Args() ([]string, error) {
	if r.InstallArgs == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(r.InstallArgs)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidArguments,
			"Invalid install arguments %q: %v", r.InstallArgs, err)
	}
	return args, nil
}

// BlueprintPluginsURL returns <root>/<blueprintID>/plugins.
func BlueprintPluginsURL(root, blueprintID string) string {
	return strings.TrimRight(root, "/") + "/" + blueprintID + "/plugins"
}
