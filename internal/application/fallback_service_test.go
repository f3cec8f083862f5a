package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sso-harvest/internal/domain"
)

func TestFallbackScanSeparatesPlaintextAndEncrypted(t *testing.T) {
	t.Parallel()

	db := &fakeCookieDB{
		rows: map[domain.ProfileID][]domain.StoredCookie{
			"Default":   {{Profile: "Default", Host: ".grok.com", Name: "sso", EncryptedLen: 187}},
			"Profile 1": {{Profile: "Profile 1", Host: ".grok.com", Name: "sso", Value: "plain"}},
			"Profile 2": {{Profile: "Profile 2", Host: ".x.com", Name: "sso", Value: "plain"}},
		},
		errs: map[domain.ProfileID]error{"Profile 3": errors.New("no cookie database")},
	}
	svc := NewFallbackService(staticProfiles{"Default", "Profile 1", "Profile 2", "Profile 3"}, db, nil)

	report, err := svc.Scan(context.Background(), ScanCommand{Domains: []string{"grok.com", "x.com"}, Name: "sso"})
	require.NoError(t, err)

	assert.Len(t, report.Cookies, 3)
	assert.True(t, report.Cookies[0].Encrypted())
	require.Len(t, report.Tokens, 1)
	assert.Equal(t, domain.ExtractedToken{Token: "plain", Domain: ".grok.com", Profile: "Profile 1"}, report.Tokens[0])
	assert.Contains(t, report.Failures, domain.ProfileID("Profile 3"))
}

func TestFallbackScanExplicitProfiles(t *testing.T) {
	t.Parallel()

	db := &fakeCookieDB{rows: map[domain.ProfileID][]domain.StoredCookie{
		"Profile 2": {{Profile: "Profile 2", Host: ".grok.com", Name: "sso", Value: "v"}},
	}}
	svc := NewFallbackService(staticProfiles{"Default"}, db, nil)

	report, err := svc.Scan(context.Background(), ScanCommand{Profiles: []domain.ProfileID{"Profile 2"}, Name: "sso"})
	require.NoError(t, err)
	require.Len(t, report.Tokens, 1)
	assert.Empty(t, report.Failures)
}
