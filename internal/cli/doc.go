// Package cli defines the Cobra command tree for the plugin-installer CLI.
// Each file in this package registers one top-level command (install,
// resolve, doctor, etc.) with the root command. Command implementations
// delegate to internal packages and only handle flag parsing and output.
package cli
