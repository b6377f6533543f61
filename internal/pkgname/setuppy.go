package pkgname

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

//go:embed scripts/setup_name.py
var setupNameScript string

// SetupPy evaluates setup.py with the virtualenv's interpreter and captures
// the name it passes to setup().
type SetupPy struct {
	Venv   *runtime.Virtualenv
	Runner runtime.CommandRunner
}

// Extract implements Extractor.
func (s *SetupPy) Extract(ctx context.Context, dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, "setup.py")); os.IsNotExist(err) {
		return "", errNoName
	}

	cmd := s.Venv.Command("python", "-c", setupNameScript, dir)
	cmd.Dir = dir
	res, err := runtime.RunChecked(ctx, s.Runner, cmd)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(res.Stdout)
	if name == "" {
		return "", errNoName
	}
	return name, nil
}
