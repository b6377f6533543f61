// Package installer installs blueprint plugins into an agent's runtime prefix.
//
// Each plugin goes through the same sequence: its source is resolved to an
// archive URL, the archive is acquired into a scratch directory, pip installs
// the unpacked package, the package's distribution name is read from its
// metadata and the plugin is registered with the agent daemon under that
// name. The scratch directory is always removed before InstallPlugin returns.
package installer
