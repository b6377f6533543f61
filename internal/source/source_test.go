package source

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/failure"
)

func TestResolve(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints"}

	tests := []struct {
		name   string
		plugin descriptor.Plugin
		want   Resolved
	}{
		{
			name:   "http url unchanged",
			plugin: descriptor.Plugin{Name: "p", Source: "http://x/y.zip"},
			want:   Resolved{URL: "http://x/y.zip"},
		},
		{
			name:   "https url unchanged",
			plugin: descriptor.Plugin{Name: "p", Source: "https://google.com"},
			want:   Resolved{URL: "https://google.com"},
		},
		{
			name:   "relative source",
			plugin: descriptor.Plugin{Name: "p", Source: "myplugin"},
			want:   Resolved{URL: "https://fs/blueprints/bp1/plugins/myplugin.zip"},
		},
		{
			name:   "nested relative source",
			plugin: descriptor.Plugin{Name: "p", Source: "vendor/myplugin"},
			want:   Resolved{URL: "https://fs/blueprints/bp1/plugins/vendor/myplugin.zip"},
		},
		{
			name:   "install arguments trimmed",
			plugin: descriptor.Plugin{Name: "p", Source: "myplugin", InstallArguments: "  --pre -v \n"},
			want:   Resolved{URL: "https://fs/blueprints/bp1/plugins/myplugin.zip", InstallArgs: "--pre -v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve("bp1", tt.plugin)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_TrailingSlashRoot(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints/"}
	got, err := r.Resolve("bp1", descriptor.Plugin{Source: "myplugin"})
	if err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://fs/blueprints/bp1/plugins/myplugin.zip" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestResolve_InvalidScheme(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints"}
	_, err := r.Resolve("bp1", descriptor.Plugin{Source: "bla://google.com"})
	if err == nil {
		t.Fatal("expected error for invalid scheme")
	}
	if err.Error() != "Invalid schema: bla" {
		t.Errorf("error = %q, want %q", err.Error(), "Invalid schema: bla")
	}
	if !errors.Is(err, failure.ErrInvalidScheme) || !failure.IsNonRecoverable(err) {
		t.Errorf("expected non-recoverable invalid scheme error, got %v", err)
	}
}

func TestResolve_MissingSource(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints"}
	for _, src := range []string{"", "   ", "\t\n"} {
		_, err := r.Resolve("bp1", descriptor.Plugin{Name: "p", Source: src})
		if !errors.Is(err, failure.ErrMissingSource) {
			t.Errorf("Resolve(source=%q) error = %v, want ErrMissingSource", src, err)
		}
	}
}

func TestResolve_RejectsUnknownSchemes(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints"}
	rapid.Check(t, func(t *rapid.T) {
		scheme := rapid.StringMatching(`[a-z][a-z0-9+.-]{0,8}`).
			Filter(func(s string) bool { return s != "http" && s != "https" && !strings.Contains(s, ":") }).
			Draw(t, "scheme")
		rest := rapid.StringMatching(`[a-z0-9./]{0,20}`).Draw(t, "rest")

		_, err := r.Resolve("bp", descriptor.Plugin{Source: scheme + "://" + rest})
		if err == nil {
			t.Fatalf("scheme %q should be rejected", scheme)
		}
		if !strings.Contains(err.Error(), scheme) {
			t.Fatalf("error %q does not name scheme %q", err.Error(), scheme)
		}
	})
}

func TestResolve_RelativeSourcesLandUnderBlueprint(t *testing.T) {
	r := Resolver{BlueprintsRootURL: "https://fs/blueprints"}
	rapid.Check(t, func(t *rapid.T) {
		bp := rapid.StringMatching(`[a-z0-9_-]{1,12}`).Draw(t, "blueprint")
		src := rapid.StringMatching(`[a-z0-9_-]{1,12}(/[a-z0-9_-]{1,8})?`).Draw(t, "source")

		got, err := r.Resolve(bp, descriptor.Plugin{Source: src})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "https://fs/blueprints/" + bp + "/plugins/" + src + ".zip"
		if got.URL != want {
			t.Fatalf("URL = %q, want %q", got.URL, want)
		}
	})
}

func TestResolve_RelativeSourceNeedsAbsoluteRoot(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		blueprint string
		category  error
	}{
		{"no root no blueprint", "", "", failure.ErrInvalidScheme},
		{"no root", "", "bp1", failure.ErrInvalidScheme},
		{"root without scheme", "fs/blueprints", "bp1", failure.ErrInvalidScheme},
		{"root with other scheme", "file:///srv/blueprints", "bp1", failure.ErrInvalidScheme},
		{"no blueprint", "https://fs/blueprints", " ", failure.ErrMissingSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolver{BlueprintsRootURL: tt.root}.Resolve(tt.blueprint, descriptor.Plugin{Source: "myplugin"})
			if err == nil {
				t.Fatalf("expected error, resolved to %q", got.URL)
			}
			if !errors.Is(err, tt.category) || !failure.IsNonRecoverable(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolve_AbsoluteSourceIgnoresRoot(t *testing.T) {
	got, err := Resolver{}.Resolve("", descriptor.Plugin{Source: "https://fs/p.zip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL != "https://fs/p.zip" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestResolved_Args(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"--pre -v", []string{"--pre", "-v"}},
		{`--install-option="--prefix=/opt/my dir"`, []string{"--install-option=--prefix=/opt/my dir"}},
		{`--global-option 'build_ext' -i "a b"`, []string{"--global-option", "build_ext", "-i", "a b"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Resolved{InstallArgs: tt.in}.Args()
			if err != nil {
				t.Fatalf("Args() error: %v", err)
			}
			if strings.Join(got, "\x00") != strings.Join(tt.want, "\x00") || len(got) != len(tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolved_ArgsUnbalancedQuote(t *testing.T) {
	_, err := Resolved{InstallArgs: `--install-option="--prefix=/opt`}.Args()
	if !errors.Is(err, failure.ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}
