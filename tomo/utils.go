package tomo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blang/semver"
)

// versionString is the release of the tomoprep tools.
const versionString = "0.3.1"

// Version returns the semantic version of the tomoprep tools.
func Version() semver.Version {
	ver, err := semver.Make(versionString)
	if err != nil {
		Errorf("Unable to make semver for tomoprep %q: %v\n", versionString, err)
	}
	return ver
}

// ConvertToAbsolute returns an absolute path for the given path, treating a
// relative path as relative to the given directory.  Paths that are URLs,
// e.g., "gs://bucket/data", are returned unchanged.
func ConvertToAbsolute(path, dir string) (string, error) {
	if path == "" || filepath.IsAbs(path) || IsURL(path) {
		return path, nil
	}
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("could not get current directory: %v", err)
		}
	}
	return filepath.Abs(filepath.Join(dir, path))
}

// IsURL returns true if the string has a URL scheme like "file://" or "gs://".
func IsURL(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for _, r := range s[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
