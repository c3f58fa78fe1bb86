package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const releasesURL = "https://api.github.com/repos/slipway-sh/slipway/releases/latest"

// httpClient bounds both the release check and the archive download.
var httpClient = &http.Client{Timeout: 30 * time.Second}

type githubRelease struct {
	TagName string `json:"tag_name"`
}

// CheckLatestVersion fetches the latest release tag from GitHub.
func CheckLatestVersion() (string, error) {
	req, err := http.NewRequest("GET", releasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to parse release info: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release info carries no tag")
	}

	return release.TagName, nil
}

// IsNewer returns true if latest is a higher semver than current.
// Both may optionally have a "v" prefix.
func IsNewer(current, latest string) bool {
	cur, ok := parseVersion(current)
	if !ok {
		return false
	}
	lat, ok := parseVersion(latest)
	if !ok {
		return false
	}
	for i := 0; i < 3; i++ {
		if lat[i] > cur[i] {
			return true
		}
		if lat[i] < cur[i] {
			return false
		}
	}
	return false
}

// parseVersion strips a "v" prefix and splits "major.minor.patch" into ints.
func parseVersion(v string) ([3]int, bool) {
	var nums [3]int
	v = strings.TrimPrefix(v, "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return nums, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nums, false
		}
		nums[i] = n
	}
	return nums, true
}

// BuildArchiveURL constructs the download URL for the given version/os/arch.
// Version should include the "v" prefix (e.g. "v1.3.0").
func BuildArchiveURL(version, goos, goarch string) string {
	ver := strings.TrimPrefix(version, "v")
	ext := "tar.gz"
	if goos == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf(
		"https://github.com/slipway-sh/slipway/releases/download/%s/slipway_%s_%s_%s.%s",
		version, ver, goos, goarch, ext,
	)
}

// Update checks for a newer version and replaces the current binary.
func Update(currentVersion string, pretend bool, w io.Writer) error {
	if currentVersion == "dev" {
		return fmt.Errorf("cannot update a dev build — install from a release instead")
	}

	fmt.Fprintf(w, "Checking for updates...\n")

	latest, err := CheckLatestVersion()
	if err != nil {
		return err
	}

	if !IsNewer(currentVersion, latest) {
		fmt.Fprintf(w, "Already up-to-date (%s)\n", currentVersion)
		return nil
	}

	fmt.Fprintf(w, "Update available: %s → %s\n", currentVersion, latest)

	if pretend {
		fmt.Fprintf(w, "(pretend) would download and install %s\n", latest)
		return nil
	}

	if err := install(latest); err != nil {
		return err
	}

	fmt.Fprintf(w, "Updated slipway %s → %s\n", currentVersion, latest)
	return nil
}

// CheckOnly checks for an update and reports status without installing.
func CheckOnly(currentVersion string, w io.Writer) error {
	if currentVersion == "dev" {
		fmt.Fprintf(w, "Running dev build — cannot check for updates\n")
		return nil
	}

	fmt.Fprintf(w, "Checking for updates...\n")

	latest, err := CheckLatestVersion()
	if err != nil {
		return err
	}

	if IsNewer(currentVersion, latest) {
		fmt.Fprintf(w, "Update available: %s → %s\n", currentVersion, latest)
		fmt.Fprintf(w, "Run 'slipway update' to install\n")
	} else {
		fmt.Fprintf(w, "Already up-to-date (%s)\n", currentVersion)
	}

	return nil
}

// install replaces the running executable with the release build for the
// current platform. The replacement is staged as a sibling of the running
// binary; rename is atomic only within one filesystem.
func install(version string) error {
	archiveURL := BuildArchiveURL(version, runtime.GOOS, runtime.GOARCH)
	log.Debug().Msgf("downloading %s", archiveURL)

	archive, err := download(archiveURL)
	if err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}

	bin, err := extractBinary(archive, runtime.GOOS)
	if err != nil {
		return fmt.Errorf("failed to extract update: %w", err)
	}

	target, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find current binary: %w", err)
	}
	if target, err = filepath.EvalSymlinks(target); err != nil {
		return fmt.Errorf("failed to resolve binary path: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat current binary: %w", err)
	}

	staged := target + ".new"
	if err := os.WriteFile(staged, bin, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to stage new binary: %w", err)
	}
	// WriteFile permissions pass through the umask; match the old binary
	// exactly.
	if err := os.Chmod(staged, info.Mode().Perm()); err != nil {
		os.Remove(staged)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(staged, target); err != nil {
		os.Remove(staged)
		return fmt.Errorf("failed to replace binary: %w", err)
	}
	return nil
}

func download(url string) ([]byte, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// extractBinary pulls the release binary out of an archive. Releases ship
// tar.gz everywhere except windows, which gets zip.
func extractBinary(archive []byte, goos string) ([]byte, error) {
	if goos == "windows" {
		return unzipOne(archive, binaryName(goos))
	}
	return untarOne(archive, binaryName(goos))
}

func binaryName(goos string) string {
	if goos == "windows" {
		return "slipway.exe"
	}
	return "slipway"
}

func untarOne(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg && filepath.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}

func unzipOne(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}
