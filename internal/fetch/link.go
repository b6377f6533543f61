package fetch

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

var hashes = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// Link is a package URL with the optional "#<algo>=<hex>" fragment pip uses
// to pin an archive's digest.
type Link struct {
	URL      string
	HashName string
	Hash     string
}

// ParseLink splits rawURL into the URL to request and its digest fragment.
func ParseLink(rawURL string) (Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Link{}, fmt.Errorf("parsing url %s: %w", rawURL, err)
	}

	l := Link{}
	if name, value, ok := strings.Cut(u.Fragment, "="); ok {
		if _, known := hashes[name]; known {
			l.HashName = name
			l.Hash = strings.ToLower(value)
		}
	}
	u.Fragment = ""
	u.RawFragment = ""
	l.URL = u.String()
	return l, nil
}

// Filename returns the last path segment of the URL, or "package" when the
// URL has none.
func (l Link) Filename() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return "package"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "package"
	}
	return base
}

// Verify checks the file at archivePath against the link's digest, if any.
func (l Link) Verify(archivePath string) error {
	if l.HashName == "" {
		return nil
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive for checksum: %w", err)
	}
	defer f.Close()

	h := hashes[l.HashName]()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if actual != l.Hash {
		return fmt.Errorf("%s mismatch: expected %s, got %s", l.HashName, l.Hash, actual)
	}
	return nil
}
