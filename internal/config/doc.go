// Package config manages installer settings stored at
// ~/.plugin-installer/config.yaml, overridable through PLUGIN_INSTALLER_*
// environment variables. It resolves them into a validated Config.
package config
