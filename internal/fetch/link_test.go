package fetch

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"testing"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		raw      string
		url      string
		hashName string
		hash     string
		filename string
	}{
		{"http://fs/bp/plugins/p.zip", "http://fs/bp/plugins/p.zip", "", "", "p.zip"},
		{"https://fs/p-1.0.tar.gz#sha256=ABCD", "https://fs/p-1.0.tar.gz", "sha256", "abcd", "p-1.0.tar.gz"},
		{"https://fs/p.zip#egg=p", "https://fs/p.zip", "", "", "p.zip"},
		{"https://google.com", "https://google.com", "", "", "package"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			l, err := ParseLink(tt.raw)
			if err != nil {
				t.Fatalf("ParseLink error: %v", err)
			}
			if l.URL != tt.url || l.HashName != tt.hashName || l.Hash != tt.hash {
				t.Errorf("ParseLink(%q) = %+v", tt.raw, l)
			}
			if got := l.Filename(); got != tt.filename {
				t.Errorf("Filename() = %q, want %q", got, tt.filename)
			}
		})
	}
}

func TestLink_VerifyMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.zip")
	data := []byte("archive bytes")
	writeTestFile(t, path, data)
	sum := md5.Sum(data)

	l := Link{URL: "http://fs/p.zip", HashName: "md5", Hash: hex.EncodeToString(sum[:])}
	if err := l.Verify(path); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	l.Hash = "ffff"
	if err := l.Verify(path); err == nil {
		t.Error("expected mismatch")
	}
}

func TestLink_VerifyWithoutDigest(t *testing.T) {
	if err := (Link{URL: "http://fs/p.zip"}).Verify("/does/not/exist"); err != nil {
		t.Errorf("Verify without digest should be a no-op, got %v", err)
	}
}
