//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
)

// testEnv holds paths to an isolated fake agent installation.
type testEnv struct {
	Virtualenv string // fake virtualenv whose executables are shell scripts
	Workdir    string // daemon work directory
	TempDir    string // parent of scratch directories
	CallLog    string // every fake executable appends its argv here
}

const fakePip = `#!/bin/sh
echo "pip $*" >> "$CALL_LOG"
if [ "$1" = "--version" ]; then
  echo "pip 23.0.1 from /env/lib/python3.11/site-packages/pip (python 3.11)"
  exit 0
fi
if [ "$2" = "--no-install" ]; then
  mkdir -p "$5/legacy-plugin"
  printf "from setuptools import setup\nsetup(name='legacy-plugin')\n" > "$5/legacy-plugin/setup.py"
  mkdir -p "$5/legacy-plugin/legacy_tasks"
  : > "$5/legacy-plugin/legacy_tasks/__init__.py"
  : > "$5/legacy-plugin/legacy_tasks/tasks.py"
  exit 0
fi
if [ -n "$FAIL_PIP" ]; then
  echo "could not install" >&2
  exit 1
fi
exit 0
`

// fakePython stands in for the name helper: it prints the name passed to
// setup() in the setup.py of the directory given as its third argument.
const fakePython = `#!/bin/sh
echo "python $1 <script> $3" >> "$CALL_LOG"
sed -n "s/.*name='\([^']*\)'.*/\1/p" "$3/setup.py"
`

const fakeAgent = `#!/bin/sh
echo "cloudify-agent $*" >> "$CALL_LOG"
`

// setupTestEnv creates the fake virtualenv and points CALL_LOG at a file in
// the test's temporary directory.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("fake virtualenv uses shell scripts")
	}

	root := t.TempDir()
	env := &testEnv{
		Virtualenv: filepath.Join(root, "env"),
		Workdir:    filepath.Join(root, "work"),
		TempDir:    filepath.Join(root, "tmp"),
		CallLog:    filepath.Join(root, "calls.log"),
	}
	t.Setenv("CALL_LOG", env.CallLog)

	for _, dir := range []string{filepath.Join(env.Virtualenv, "bin"), env.Workdir, env.TempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}
	writeScript(t, filepath.Join(env.Virtualenv, "bin", "pip"), fakePip)
	writeScript(t, filepath.Join(env.Virtualenv, "bin", "python"), fakePython)
	writeScript(t, filepath.Join(env.Virtualenv, "bin", "cloudify-agent"), fakeAgent)
	return env
}

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// calls returns the lines of the call log.
func (e *testEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.CallLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading call log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// assertNoScratch fails if any scratch directory was left behind.
func (e *testEnv) assertNoScratch(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.TempDir)
	if err != nil {
		t.Fatalf("reading temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directories left behind: %d", len(entries))
	}
}

// pluginArchive builds a zip with a single top-level directory, the layout of
// an sdist.
func pluginArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// newFileServer serves archives keyed by URL path.
func newFileServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func assertContains(t *testing.T, lines []string, want string) {
	t.Helper()
	for _, l := range lines {
		if strings.Contains(l, want) {
			return
		}
	}
	t.Errorf("no line contains %q in:\n%s", want, strings.Join(lines, "\n"))
}
