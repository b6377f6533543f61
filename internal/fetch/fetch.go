package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentx-labs/plugin-installer/internal/branding"
	"github.com/agentx-labs/plugin-installer/internal/failure"
	"github.com/agentx-labs/plugin-installer/internal/pip"
)

// Directory names inside a scratch directory.
const (
	archiveDir = "archive"
	packageDir = "package"
	buildDir   = "build"
)

// TierFunc reports the capability tier of the package manager.
type TierFunc func(ctx context.Context) (pip.Tier, error)

// LegacyUnpacker downloads and unpacks url below dir using the package
// manager itself.
type LegacyUnpacker interface {
	UnpackLegacy(ctx context.Context, url, dir string) error
}

// Scratch is an acquired package staged in a temporary directory.
type Scratch struct {
	// Root is the scratch directory created for the acquisition.
	Root string
	// PackageDir holds the unpacked package (it contains setup.py).
	PackageDir string

	released bool
}

// Release removes the scratch directory. Calling it more than once is safe.
func (s *Scratch) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	if err := os.RemoveAll(s.Root); err != nil {
		return fmt.Errorf("removing scratch directory %s: %w", s.Root, err)
	}
	return nil
}

// Fetcher acquires package archives.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	tempDir    string
	tier       TierFunc
	legacy     LegacyUnpacker
	logger     zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent overrides the User-Agent sent with downloads.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTempDir sets the parent directory for scratch directories.
// Empty means os.TempDir().
func WithTempDir(dir string) Option {
	return func(f *Fetcher) {
		f.tempDir = dir
	}
}

// WithLegacyUnpacker sets the unpacker used for pip older than 6.
func WithLegacyUnpacker(u LegacyUnpacker) Option {
	return func(f *Fetcher) {
		f.legacy = u
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher. tier decides which unpack routine is used.
func New(tier TierFunc, opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		userAgent:  branding.UserAgent(),
		tier:       tier,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("component", "fetch").Logger()
	return f
}

// Acquire creates a scratch directory and downloads and unpacks url into it.
// On failure the scratch directory is removed and a non-recoverable error
// naming url is returned.
func (f *Fetcher) Acquire(ctx context.Context, url string) (*Scratch, error) {
	root, err := os.MkdirTemp(f.tempDir, "plugin-")
	if err != nil {
		return nil, acquisitionError(url, fmt.Errorf("creating scratch directory: %w", err))
	}
	s := &Scratch{Root: root}

	pkgDir, err := f.unpack(ctx, url, root)
	if err != nil {
		if rmErr := s.Release(); rmErr != nil {
			f.logger.Warn().Err(rmErr).Str("dir", root).Msg("Failed to remove scratch directory")
		}
		return nil, acquisitionError(url, err)
	}
	s.PackageDir = pkgDir

	f.logger.Debug().Str("url", url).Str("dir", pkgDir).Msg("Plugin package unpacked")
	return s, nil
}

func (f *Fetcher) unpack(ctx context.Context, url, root string) (string, error) {
	if f.tier == nil {
		return "", errors.New("no pip capability check configured")
	}
	tier, err := f.tier(ctx)
	if err != nil {
		return "", err
	}
	f.logger.Debug().Str("url", url).Stringer("tier", tier).Msg("Acquiring plugin package")

	if tier == pip.TierModern {
		return f.unpackNative(ctx, url, root)
	}
	return f.unpackLegacy(ctx, url, root)
}

func (f *Fetcher) unpackNative(ctx context.Context, url, root string) (string, error) {
	link, err := ParseLink(url)
	if err != nil {
		return "", err
	}

	archives := filepath.Join(root, archiveDir)
	if err := os.MkdirAll(archives, 0o700); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	archivePath, err := f.download(ctx, link, archives)
	if err != nil {
		return "", err
	}
	if err := link.Verify(archivePath); err != nil {
		return "", err
	}

	dest := filepath.Join(root, packageDir)
	if err := Unpack(archivePath, dest); err != nil {
		return "", err
	}
	if err := os.RemoveAll(archives); err != nil {
		return "", fmt.Errorf("removing downloaded archive: %w", err)
	}
	return dest, nil
}

func (f *Fetcher) unpackLegacy(ctx context.Context, url, root string) (string, error) {
	if f.legacy == nil {
		return "", errors.New("pip older than 6 requires a legacy unpacker")
	}
	build := filepath.Join(root, buildDir)
	if err := f.legacy.UnpackLegacy(ctx, url, build); err != nil {
		return "", err
	}
	return findPackageDir(build)
}

// findPackageDir returns the directory pip unpacked into build. pip names it
// after the project, so the single subdirectory (or the one holding a
// setup.py) is the package.
func findPackageDir(build string) (string, error) {
	entries, err := os.ReadDir(build)
	if err != nil {
		return "", fmt.Errorf("reading build directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(build, e.Name()))
		}
	}
	if len(dirs) == 1 {
		return dirs[0], nil
	}
	for _, d := range dirs {
		if _, err := os.Stat(filepath.Join(d, "setup.py")); err == nil {
			return d, nil
		}
	}
	if isPackageRoot(build) {
		return build, nil
	}
	return "", fmt.Errorf("no unpacked package found in %s", build)
}

func isPackageRoot(dir string) bool {
	for _, marker := range []string{"setup.py", "setup.cfg", "pyproject.toml"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func acquisitionError(url string, cause error) error {
	return &failure.NonRecoverableError{
		Msg: fmt.Sprintf("Failed to download and unpack plugin from %s: %v", url, cause),
		Err: errors.Join(failure.ErrAcquisition, cause),
	}
}
