//go:build linux && !android

package chrome

func executableCandidates() []string {
	return []string{
		"/opt/google/chrome/chrome",
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	}
}
