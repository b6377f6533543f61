package branding

import "testing"

func TestEmbeddedDefaults(t *testing.T) {
	if got := CLIName(); got != "plugin-installer" {
		t.Errorf("CLIName() = %q, want %q", got, "plugin-installer")
	}
	if got := AgentCLI(); got == "" {
		t.Error("AgentCLI() should not be empty")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("virtualenv"); got != "PLUGIN_INSTALLER_VIRTUALENV" {
		t.Errorf("EnvVar(virtualenv) = %q, want %q", got, "PLUGIN_INSTALLER_VIRTUALENV")
	}
}
