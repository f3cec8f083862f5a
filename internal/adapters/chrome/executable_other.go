//go:build !linux && !darwin && !windows

package chrome

func executableCandidates() []string {
	return []string{"chromium", "chrome"}
}
