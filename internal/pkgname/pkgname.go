package pkgname

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentx-labs/plugin-installer/internal/failure"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

// Extractor returns the distribution name of the package unpacked in dir.
type Extractor interface {
	Extract(ctx context.Context, dir string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, dir string) (string, error)

// Extract calls f(ctx, dir).
func (f ExtractorFunc) Extract(ctx context.Context, dir string) (string, error) {
	return f(ctx, dir)
}

// errNoName is returned by an extractor whose metadata source is absent or
// does not declare a name.
var errNoName = errors.New("no package name declared")

// Chain tries each extractor in order and returns the first name found.
type Chain []Extractor

// Extract implements Extractor.
func (c Chain) Extract(ctx context.Context, dir string) (string, error) {
	errs := []error{failure.ErrPackageName}
	for _, e := range c {
		if e == nil {
			continue
		}
		name, err := e.Extract(ctx, dir)
		if err == nil && name != "" {
			return name, nil
		}
		if err != nil && !errors.Is(err, errNoName) {
			errs = append(errs, err)
		}
	}
	return "", &failure.NonRecoverableError{
		Msg: fmt.Sprintf("Failed finding package name for package located at: %s", dir),
		Err: errors.Join(errs...),
	}
}

// Default returns the standard chain: pyproject.toml, then setup.cfg, then
// setup.py evaluated by the virtualenv's python.
func Default(venv *runtime.Virtualenv, runner runtime.CommandRunner) Chain {
	return Chain{
		ExtractorFunc(FromPyproject),
		ExtractorFunc(FromSetupCfg),
		&SetupPy{Venv: venv, Runner: runner},
	}
}
