package pip

import (
	"context"
	"strings"

	"github.com/agentx-labs/plugin-installer/internal/failure"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

// Pip runs the pip executable of a virtualenv.
type Pip struct {
	venv   *runtime.Virtualenv
	runner runtime.CommandRunner
}

// New returns a Pip bound to venv.
func New(venv *runtime.Virtualenv, runner runtime.CommandRunner) *Pip {
	return &Pip{venv: venv, runner: runner}
}

// Install runs `pip install <target> [args...]`.
func (p *Pip) Install(ctx context.Context, target string, args ...string) error {
	return p.run(ctx, append([]string{"install", target}, args...)...)
}

// InstallNoDeps runs `pip install --no-deps <target> [args...]`.
func (p *Pip) InstallNoDeps(ctx context.Context, target string, args ...string) error {
	return p.run(ctx, append([]string{"install", "--no-deps", target}, args...)...)
}

// UnpackLegacy asks a pre-6 pip to download and unpack url into buildDir
// without installing it. pip places the package in a subdirectory of buildDir.
func (p *Pip) UnpackLegacy(ctx context.Context, url, buildDir string) error {
	return p.run(ctx, "install", "--no-install", "--no-deps", "--build", buildDir, url)
}

// Version runs `pip --version` and returns the version it reports.
func (p *Pip) Version(ctx context.Context) (string, error) {
	res, err := runtime.RunChecked(ctx, p.runner, p.venv.Command("pip", "--version"))
	if err != nil {
		return "", failure.Wrap(err, "Failed to get pip version")
	}
	v := VersionFromOutput(res.Stdout)
	if v == "" {
		return "", failure.New(failure.ErrInvalidPipVersion,
			"Failed to get pip version: unexpected output %q", strings.TrimSpace(res.Stdout))
	}
	return v, nil
}

func (p *Pip) run(ctx context.Context, args ...string) error {
	_, err := runtime.RunChecked(ctx, p.runner, p.venv.Command("pip", args...))
	return err
}

// VersionFromOutput extracts the version from `pip --version` output, which
// looks like "pip 23.0.1 from /venv/lib/python3.11/site-packages/pip (python 3.11)".
func VersionFromOutput(out string) string {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "pip" {
		return ""
	}
	return fields[1]
}
