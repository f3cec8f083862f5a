//go:build linux && !android

package profiles

import (
	"os"
	"path/filepath"
)

func DefaultUserDataDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "google-chrome")
}
