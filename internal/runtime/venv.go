package runtime

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/plugin-installer/internal/platform"
)

// ErrNoPrefix is returned when no runtime prefix was configured.
var ErrNoPrefix = errors.New("runtime prefix is not configured")

// Virtualenv is the isolated runtime prefix packages are installed into.
type Virtualenv struct {
	Prefix string
}

// NewVirtualenv returns the virtualenv rooted at prefix.
func NewVirtualenv(prefix string) (*Virtualenv, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrNoPrefix
	}
	abs, err := filepath.Abs(prefix)
	if err != nil {
		return nil, fmt.Errorf("resolving runtime prefix %s: %w", prefix, err)
	}
	return &Virtualenv{Prefix: abs}, nil
}

// Bin returns the path of an executable inside the virtualenv.
func (v *Virtualenv) Bin(name string) string {
	return filepath.Join(v.Prefix, platform.VenvBinDir(), platform.ExecutableName(name))
}

// Python returns the virtualenv's python interpreter.
func (v *Virtualenv) Python() string { return v.Bin("python") }

// Pip returns the virtualenv's pip executable.
func (v *Virtualenv) Pip() string { return v.Bin("pip") }

// Command builds a Command for an executable inside the virtualenv with the
// environment an activated virtualenv would have.
func (v *Virtualenv) Command(name string, args ...string) Command {
	return Command{
		Name: v.Bin(name),
		Args: args,
		Env:  v.Environ(),
	}
}

// Environ returns the current process environment with VIRTUAL_ENV set and
// the virtualenv's bin directory first on PATH.
func (v *Virtualenv) Environ() []string {
	env := os.Environ()
	env = setEnv(env, "VIRTUAL_ENV", v.Prefix)
	binDir := filepath.Join(v.Prefix, platform.VenvBinDir())
	path := binDir
	if cur := lookupEnv(env, "PATH"); cur != "" {
		path = binDir + string(os.PathListSeparator) + cur
	}
	env = setEnv(env, "PATH", path)
	// A PYTHONHOME leaking in from the caller breaks the virtualenv interpreter.
	return unsetEnv(env, "PYTHONHOME")
}

// Missing returns the executables among names that do not exist in the virtualenv.
func (v *Virtualenv) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		info, err := os.Stat(v.Bin(name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

func unsetEnv(env []string, key string) []string {
	prefix := key + "="
	out := env[:0]
	for _, e := range env {
		if !strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}
