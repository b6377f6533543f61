// Package daemon registers an installed plugin with the agent daemon, either
// through the agent CLI or by listing its task module in the daemon's
// includes file.
package daemon
