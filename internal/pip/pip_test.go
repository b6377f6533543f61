package pip

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/plugin-installer/internal/failure"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

func newTestPip(t *testing.T) (*Pip, *runtime.FakeRunner, *runtime.Virtualenv) {
	t.Helper()
	venv, err := runtime.NewVirtualenv(filepath.Join(t.TempDir(), "env"))
	require.NoError(t, err)
	runner := runtime.NewFakeRunner()
	return New(venv, runner), runner, venv
}

func TestPip_Install(t *testing.T) {
	p, runner, venv := newTestPip(t)
	runner.AddResult(venv.Pip(), []string{"install", "/tmp/plugin", "--pre"}, runtime.Result{})

	require.NoError(t, p.Install(context.Background(), "/tmp/plugin", "--pre"))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, venv.Pip(), calls[0].Name)
	assert.Equal(t, []string{"install", "/tmp/plugin", "--pre"}, calls[0].Args)
	assert.NotNil(t, calls[0].Env)
}

func TestPip_InstallNoDeps(t *testing.T) {
	p, runner, venv := newTestPip(t)
	runner.AddResult(venv.Pip(), []string{"install", "--no-deps", "/tmp/plugin"}, runtime.Result{})

	require.NoError(t, p.InstallNoDeps(context.Background(), "/tmp/plugin"))
}

func TestPip_InstallFailure(t *testing.T) {
	p, runner, venv := newTestPip(t)
	runner.AddResult(venv.Pip(), []string{"install", "/tmp/plugin"}, runtime.Result{ExitCode: 1, Stderr: "error: bad setup.py"})

	err := p.Install(context.Background(), "/tmp/plugin")
	require.Error(t, err)
	assert.True(t, failure.IsNonRecoverable(err))
	assert.True(t, errors.Is(err, failure.ErrCommandFailed))
}

func TestPip_UnpackLegacy(t *testing.T) {
	p, runner, venv := newTestPip(t)
	args := []string{"install", "--no-install", "--no-deps", "--build", "/tmp/build", "http://fs/p.zip"}
	runner.AddResult(venv.Pip(), args, runtime.Result{})

	require.NoError(t, p.UnpackLegacy(context.Background(), "http://fs/p.zip", "/tmp/build"))
}

func TestPip_Version(t *testing.T) {
	p, runner, venv := newTestPip(t)
	runner.AddResult(venv.Pip(), []string{"--version"}, runtime.Result{
		Stdout: "pip 23.0.1 from /env/lib/python3.11/site-packages/pip (python 3.11)\n",
	})

	v, err := p.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "23.0.1", v)
}

func TestPip_VersionUnexpectedOutput(t *testing.T) {
	p, runner, venv := newTestPip(t)
	runner.AddResult(venv.Pip(), []string{"--version"}, runtime.Result{Stdout: "garbage"})

	_, err := p.Version(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrInvalidPipVersion))
}

func TestVersionFromOutput(t *testing.T) {
	assert.Equal(t, "1.5.6", VersionFromOutput("pip 1.5.6 from /usr/lib/python2.7/dist-packages (python 2.7)"))
	assert.Equal(t, "", VersionFromOutput(""))
	assert.Equal(t, "", VersionFromOutput("pipx 1.0"))
}
