package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"runtime"
	"strings"
	"testing"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.1.0", true},
		{"1.0.0", "2.0.0", true},
		{"1.2.3", "1.2.3", false},
		{"2.0.0", "1.0.0", false},
		{"1.3.0", "1.2.9", false},
		{"v1.0.0", "1.0.1", true},
		{"1.0.0", "v1.0.1", true},
		{"v1.0.0", "v1.0.0", false},
		{"v0.9.9", "v0.9.10", true},
		{"v1.2.5", "v1.3.0", true},
		{"dev", "1.0.0", false},
		{"1.0.0", "snapshot", false},
	}

	for _, tt := range tests {
		if got := IsNewer(tt.current, tt.latest); got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
		ok   bool
	}{
		{"1.2.3", [3]int{1, 2, 3}, true},
		{"v1.2.3", [3]int{1, 2, 3}, true},
		{"0.0.0", [3]int{0, 0, 0}, true},
		{"10.20.30", [3]int{10, 20, 30}, true},
		{"dev", [3]int{}, false},
		{"1.2", [3]int{}, false},
		{"1.2.three", [3]int{}, false},
		{"", [3]int{}, false},
	}

	for _, tt := range tests {
		got, ok := parseVersion(tt.in)
		if ok != tt.ok {
			t.Errorf("parseVersion(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseVersion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildArchiveURL(t *testing.T) {
	tests := []struct {
		version, goos, goarch string
		want                  string
	}{
		{
			"v1.3.0", "linux", "amd64",
			"https://github.com/slipway-sh/slipway/releases/download/v1.3.0/slipway_1.3.0_linux_amd64.tar.gz",
		},
		{
			"v1.3.0", "darwin", "arm64",
			"https://github.com/slipway-sh/slipway/releases/download/v1.3.0/slipway_1.3.0_darwin_arm64.tar.gz",
		},
		{
			"v1.0.0", "windows", "amd64",
			"https://github.com/slipway-sh/slipway/releases/download/v1.0.0/slipway_1.0.0_windows_amd64.zip",
		},
	}

	for _, tt := range tests {
		if got := BuildArchiveURL(tt.version, tt.goos, tt.goarch); got != tt.want {
			t.Errorf("BuildArchiveURL(%q, %q, %q) = %s, want %s", tt.version, tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestBuildArchiveURLCurrentPlatform(t *testing.T) {
	url := BuildArchiveURL("v1.0.0", runtime.GOOS, runtime.GOARCH)
	if !strings.Contains(url, runtime.GOOS) || !strings.Contains(url, runtime.GOARCH) {
		t.Errorf("URL %q does not name the current platform %s/%s", url, runtime.GOOS, runtime.GOARCH)
	}
}

// --- archive extraction ---

func tarGzArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		hdr := &tar.Header{Name: name, Mode: 0o755, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header: %v", err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatalf("tar body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func zipArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		if _, err := f.Write(body); err != nil {
			t.Fatalf("zip body: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractBinaryTarGz(t *testing.T) {
	archive := tarGzArchive(t, map[string][]byte{
		"LICENSE":               []byte("mit"),
		"slipway_1.0.0/slipway": []byte("binary bytes"),
	})

	got, err := extractBinary(archive, "linux")
	if err != nil {
		t.Fatalf("extractBinary: %v", err)
	}
	if string(got) != "binary bytes" {
		t.Errorf("extracted %q, want %q", got, "binary bytes")
	}
}

func TestExtractBinaryZip(t *testing.T) {
	archive := zipArchive(t, map[string][]byte{
		"slipway.exe": []byte("exe bytes"),
	})

	got, err := extractBinary(archive, "windows")
	if err != nil {
		t.Fatalf("extractBinary: %v", err)
	}
	if string(got) != "exe bytes" {
		t.Errorf("extracted %q, want %q", got, "exe bytes")
	}
}

func TestExtractBinaryMissing(t *testing.T) {
	archive := tarGzArchive(t, map[string][]byte{"README.md": []byte("docs")})
	if _, err := extractBinary(archive, "linux"); err == nil {
		t.Fatal("expected an error for an archive without the binary")
	}
}
