package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IncludesFile is the file, relative to the daemon work directory, listing
// the task modules the daemon imports on start.
const IncludesFile = "celeryd-includes"

const includesKey = "INCLUDES="

var skippedPackages = map[string]bool{"test": true, "tests": true, "docs": true}

// TaskModules returns the modules of the top-level python packages in
// packageDir as dotted names, e.g. "mock_for_test.module". A src/ layout is
// searched when packageDir itself holds no package. __init__ files, test
// packages and test_*.py files are skipped.
func TaskModules(packageDir string) ([]string, error) {
	modules, err := packageModules(packageDir)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		if modules, err = packageModules(filepath.Join(packageDir, "src")); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no python package modules found in %s", packageDir)
	}
	return modules, nil
}

func packageModules(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var modules []string
	for _, e := range entries {
		pkg := e.Name()
		if !e.IsDir() || strings.HasPrefix(pkg, ".") || skippedPackages[pkg] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, pkg, "__init__.py")); err != nil {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, pkg))
		if err != nil {
			return nil, fmt.Errorf("reading package %s: %w", pkg, err)
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, ".py") || name == "__init__.py" || strings.HasPrefix(name, "test_") {
				continue
			}
			modules = append(modules, pkg+"."+strings.TrimSuffix(name, ".py"))
		}
	}
	return modules, nil
}

// UpdateIncludes appends modules to the INCLUDES line of the file at path,
// creating the file when absent. Existing entries keep their order and a
// module already listed is not added again. Other lines are preserved.
func UpdateIncludes(path string, modules []string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading includes file: %w", err)
	}

	var lines []string
	var entries []string
	found := false
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		if !found && strings.HasPrefix(line, includesKey) {
			found = true
			entries = splitEntries(strings.TrimPrefix(line, includesKey))
			lines = append(lines, includesKey)
			continue
		}
		lines = append(lines, line)
	}
	if !found {
		lines = append(lines, includesKey)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e] = true
	}
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		entries = append(entries, m)
	}

	for i, line := range lines {
		if line == includesKey {
			lines[i] = includesKey + strings.Join(entries, ",")
			break
		}
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing includes file: %w", err)
	}
	return nil
}

// ReadIncludes returns the modules listed in the includes file at path.
func ReadIncludes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading includes file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, includesKey) {
			return splitEntries(strings.TrimPrefix(line, includesKey)), nil
		}
	}
	return nil, nil
}

func splitEntries(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
