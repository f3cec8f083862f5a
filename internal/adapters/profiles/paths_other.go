//go:build !(linux && !android) && !darwin && !windows

package profiles

func DefaultUserDataDir() string {
	return ""
}
