//go:build windows

package profiles

import (
	"os"
	"path/filepath"
)

func DefaultUserDataDir() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		return ""
	}
	return filepath.Join(base, "Google", "Chrome", "User Data")
}
