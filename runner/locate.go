package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCandidates returns the conventional build-output locations
// for a target implementation's binary.
func DefaultCandidates(language string) []string {
	switch strings.ToLower(language) {
	case "rust":
		return []string{
			filepath.Join("target", "release", "main"),
			filepath.Join("target", "debug", "main"),
			"main",
		}
	case "cpp", "c++":
		return []string{
			"main_cpp",
			filepath.Join("build", "main"),
			filepath.Join("cmake-build-release", "main"),
			"main",
		}
	default:
		return []string{language}
	}
}

// LocateBinary returns the first candidate path that exists as a
// regular file, resolved to an absolute path. The error names every
// path tried so the user knows what to build.
func LocateBinary(candidates []string) (string, error) {
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}

		abs, err := filepath.Abs(c)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", c, err)
		}

		return abs, nil
	}

	return "", fmt.Errorf(
		"no benchmark binary found, tried: %s",
		strings.Join(candidates, ", "),
	)
}
