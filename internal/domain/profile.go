package domain

import (
	"fmt"
	"strings"
)

type ProfileID string

func (p ProfileID) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("profile id is required")
	}
	if strings.ContainsAny(string(p), `/\`) {
		return fmt.Errorf("profile id %q must be a directory name, not a path", p)
	}
	return nil
}

// NormalizeProfiles trims names, drops empties and keeps the first occurrence of each.
func NormalizeProfiles(profiles []ProfileID) []ProfileID {
	out := make([]ProfileID, 0, len(profiles))
	seen := make(map[ProfileID]struct{}, len(profiles))
	for _, profile := range profiles {
		trimmed := ProfileID(strings.TrimSpace(string(profile)))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

type ProfileState string

const (
	ProfileStateIdle       ProfileState = "idle"
	ProfileStateLaunching  ProfileState = "launching"
	ProfileStateSettling   ProfileState = "settling"
	ProfileStateConnecting ProfileState = "connecting"
	ProfileStateExtracting ProfileState = "extracting"
	ProfileStateClosing    ProfileState = "closing"
	ProfileStateDone       ProfileState = "done"
	ProfileStateFailed     ProfileState = "failed"
)

var profileTransitions = map[ProfileState][]ProfileState{
	ProfileStateIdle:       {ProfileStateLaunching},
	ProfileStateLaunching:  {ProfileStateSettling, ProfileStateClosing},
	ProfileStateSettling:   {ProfileStateConnecting, ProfileStateClosing},
	ProfileStateConnecting: {ProfileStateExtracting, ProfileStateClosing},
	ProfileStateExtracting: {ProfileStateClosing},
	ProfileStateClosing:    {ProfileStateDone, ProfileStateFailed},
}

func (s ProfileState) Terminal() bool {
	return s == ProfileStateDone || s == ProfileStateFailed
}

func (s ProfileState) CanTransition(next ProfileState) bool {
	for _, allowed := range profileTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
