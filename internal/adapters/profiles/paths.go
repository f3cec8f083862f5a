package profiles

import (
	"os"
	"path/filepath"

	"github.com/bnema/sso-harvest/internal/domain"
)

// CookieDBCandidates lists where a profile's cookie database may live,
// newest layout first.
func CookieDBCandidates(userDataDir string, profile domain.ProfileID) []string {
	return []string{
		filepath.Join(userDataDir, string(profile), "Network", "Cookies"),
		filepath.Join(userDataDir, string(profile), "Cookies"),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CookieDB returns the first existing cookie database for profile.
func CookieDB(userDataDir string, profile domain.ProfileID) (string, bool) {
	for _, candidate := range CookieDBCandidates(userDataDir, profile) {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
