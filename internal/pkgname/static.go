package pkgname

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
)

type pyproject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// FromPyproject reads [project].name, or [tool.poetry].name, from pyproject.toml.
func FromPyproject(_ context.Context, dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if os.IsNotExist(err) {
		return "", errNoName
	}
	if err != nil {
		return "", fmt.Errorf("reading pyproject.toml: %w", err)
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing pyproject.toml: %w", err)
	}
	if name := strings.TrimSpace(doc.Project.Name); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(doc.Tool.Poetry.Name); name != "" {
		return name, nil
	}
	return "", errNoName
}

// FromSetupCfg reads [metadata] name from setup.cfg. pbr packages keep their
// name there.
func FromSetupCfg(_ context.Context, dir string) (string, error) {
	path := filepath.Join(dir, "setup.cfg")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", errNoName
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("parsing setup.cfg: %w", err)
	}
	section, err := cfg.GetSection("metadata")
	if err != nil {
		return "", errNoName
	}
	name := strings.TrimSpace(section.Key("name").String())
	if name == "" {
		return "", errNoName
	}
	return name, nil
}
