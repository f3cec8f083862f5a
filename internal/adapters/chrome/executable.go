package chrome

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/sso-harvest/internal/domain"
)

// ResolveExecutable returns the configured browser binary, or the first
// installed candidate for this platform when none is configured.
func ResolveExecutable(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		if path, ok := findExecutable(configured); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s", domain.ErrExecutableNotFound, configured)
	}

	candidates := executableCandidates()
	for _, candidate := range candidates {
		if path, ok := findExecutable(candidate); ok {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", domain.ErrExecutableNotFound, strings.Join(candidates, ", "))
}

func findExecutable(candidate string) (string, bool) {
	if strings.ContainsRune(candidate, os.PathSeparator) || filepath.IsAbs(candidate) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			return "", false
		}
		return candidate, true
	}

	path, err := lookPath(candidate)
	if err != nil {
		return "", false
	}
	return path, true
}

// ProcessName is the name the OS reports for processes started from exe.
func ProcessName(exe string) string {
	return filepath.Base(exe)
}
