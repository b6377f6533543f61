// Package pip wraps the package manager living in the runtime prefix: it runs
// its install commands and parses its version string to decide which unpack
// routine the installed pip supports.
package pip
