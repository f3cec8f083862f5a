//go:build windows

package chrome

import (
	"os"
	"path/filepath"
)

func executableCandidates() []string {
	var out []string
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "LOCALAPPDATA"} {
		base := os.Getenv(env)
		if base == "" {
			continue
		}
		out = append(out, filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"))
	}
	return out
}
