package fetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/plugin-installer/internal/platform"
)

// Format is an archive container format.
type Format int

// Supported archive formats.
const (
	FormatUnknown Format = iota
	FormatZip
	FormatTarGz
	FormatTar
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	case FormatTar:
		return "tar"
	default:
		return "unknown"
	}
}

// ErrUnsupportedArchive is returned for files that are neither zip nor tar.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// DetectFormat decides the archive format from the file name, falling back
// to the leading magic bytes for names without a known suffix.
func DetectFormat(archivePath string) (Format, error) {
	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".whl"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(name, ".tar"):
		return FormatTar, nil
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return FormatUnknown, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("reading archive header: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return FormatZip, nil
	case bytes.HasPrefix(head, []byte{0x1f, 0x8b}):
		return FormatTarGz, nil
	case len(head) >= 262 && string(head[257:262]) == "ustar":
		return FormatTar, nil
	}
	return FormatUnknown, ErrUnsupportedArchive
}

// Unpack extracts archivePath into destDir. When every entry lives below one
// top-level directory, that directory is flattened away so destDir becomes
// the package root, matching how pip unpacks source distributions.
func Unpack(archivePath, destDir string) error {
	format, err := DetectFormat(archivePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating unpack directory: %w", err)
	}

	switch format {
	case FormatZip:
		err = unpackZip(archivePath, destDir)
	case FormatTarGz:
		err = unpackTarGz(archivePath, destDir)
	case FormatTar:
		err = unpackTarFile(archivePath, destDir)
	default:
		err = ErrUnsupportedArchive
	}
	if err != nil {
		return err
	}
	return flattenLeadingDir(destDir)
}

func unpackZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		err = writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func unpackTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	return unpackTar(tar.NewReader(gz), destDir)
}

func unpackTarFile(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	return unpackTar(tar.NewReader(f), destDir)
}

func unpackTar(tr *tar.Reader, destDir string) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Links and special files have no place in a plugin package.
		}
	}
}

// safeJoin resolves name below destDir, rejecting entries that escape it.
// The archive root itself resolves to "".
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/")))
	if clean == "." {
		return "", nil
	}
	target := filepath.Join(destDir, clean)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	return platform.Chmod(target, platform.ArchiveMode(mode, 0o644))
}

// flattenLeadingDir moves the contents of destDir's only child up one level
// when that child is a directory.
func flattenLeadingDir(destDir string) error {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return fmt.Errorf("reading unpack directory: %w", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	leading := filepath.Join(destDir, entries[0].Name())
	tmp := destDir + ".flatten"
	if err := os.Rename(leading, tmp); err != nil {
		return fmt.Errorf("flattening %s: %w", leading, err)
	}
	if err := os.Remove(destDir); err != nil {
		return fmt.Errorf("flattening %s: %w", leading, err)
	}
	if err := os.Rename(tmp, destDir); err != nil {
		return fmt.Errorf("flattening %s: %w", leading, err)
	}
	return nil
}
