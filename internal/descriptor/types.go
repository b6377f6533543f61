package descriptor

import "strings"

// Plugin describes one plugin to install.
type Plugin struct {
	Name string `yaml:"name" json:"name"`
	// Source is an http(s) URL or a path relative to the blueprint's plugins
	// directory on the file server.
	Source string `yaml:"source" json:"source"`
	// InstallArguments are passed to the package manager verbatim.
	InstallArguments string `yaml:"install_arguments,omitempty" json:"install_arguments,omitempty"`
}

// HasSource reports whether the plugin names a non-blank source.
func (p Plugin) HasSource() bool {
	return strings.TrimSpace(p.Source) != ""
}

// File is a descriptor document: the plugins of one blueprint.
type File struct {
	BlueprintID string   `yaml:"blueprint_id,omitempty" json:"blueprint_id,omitempty"`
	Plugins     []Plugin `yaml:"plugins" json:"plugins"`
}
