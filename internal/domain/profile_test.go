package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProfilesDeduplicatesAndDropsEmpty(t *testing.T) {
	t.Parallel()

	got := NormalizeProfiles([]ProfileID{"Default", " ", "Profile 1", "Default", " Profile 2 "})
	assert.Equal(t, []ProfileID{"Default", "Profile 1", "Profile 2"}, got)
}

func TestProfileIDValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ProfileID("Profile 3").Validate())
	assert.ErrorContains(t, ProfileID("").Validate(), "required")
	assert.ErrorContains(t, ProfileID("../etc").Validate(), "directory name")
}

func TestProfileStateTransitions(t *testing.T) {
	t.Parallel()

	happy := []ProfileState{
		ProfileStateIdle,
		ProfileStateLaunching,
		ProfileStateSettling,
		ProfileStateConnecting,
		ProfileStateExtracting,
		ProfileStateClosing,
		ProfileStateDone,
	}
	for i := 0; i < len(happy)-1; i++ {
		assert.Truef(t, happy[i].CanTransition(happy[i+1]), "%s -> %s", happy[i], happy[i+1])
	}

	for _, s := range []ProfileState{ProfileStateLaunching, ProfileStateSettling, ProfileStateConnecting, ProfileStateExtracting} {
		assert.Truef(t, s.CanTransition(ProfileStateClosing), "%s -> closing", s)
		assert.Falsef(t, s.CanTransition(ProfileStateDone), "%s must pass through closing", s)
	}

	assert.True(t, ProfileStateClosing.CanTransition(ProfileStateFailed))
	assert.False(t, ProfileStateDone.CanTransition(ProfileStateLaunching))
	assert.False(t, ProfileStateIdle.CanTransition(ProfileStateClosing))
	assert.True(t, ProfileStateFailed.Terminal())
	assert.False(t, ProfileStateClosing.Terminal())
}

func TestMatchesDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host, domain string
		want         bool
	}{
		{".grok.com", "grok.com", true},
		{"accounts.grok.com", ".grok.com", true},
		{"grok.com", "grok.com", true},
		{"notgrok.com", "grok.com", false},
		{"", "grok.com", false},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, MatchesDomain(tc.host, tc.domain), "%s vs %s", tc.host, tc.domain)
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", MaskToken("short"))
	long := "aaaaaaaaaaaaaaaaaaaaaaaaa" + "MIDDLE" + "bbbbbbbbbb"
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaa...bbbbbbbbbb", MaskToken(long))
}
