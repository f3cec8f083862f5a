package profiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sso-harvest/internal/domain"
)

func TestStaticNormalizes(t *testing.T) {
	t.Parallel()

	got, err := Static{"Default", "", "Profile 1", "Default"}.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileID{"Default", "Profile 1"}, got)

	_, err = Static{" "}.Profiles(context.Background())
	require.ErrorIs(t, err, domain.ErrNoProfiles)
}

func TestDiscoveryFromLocalState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	localState := `{"profile":{"info_cache":{"Profile 10":{"name":"Ten"},"Profile 2":{"name":"Two"},"Default":{"name":"Me"},"Guest Profile":{}}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Local State"), []byte(localState), 0o600))

	got, err := (&Discovery{UserDataDir: dir}).Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileID{"Default", "Profile 2", "Profile 10", "Guest Profile"}, got)
}

func TestDiscoveryFallsBackToDirectoryScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"Default", "Profile 3", "Profile 1", "Crashpad", "System Profile"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o700))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Local State"), []byte("{"), 0o600))

	got, err := (&Discovery{UserDataDir: dir}).Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileID{"Default", "Profile 1", "Profile 3"}, got)
}

func TestDiscoveryEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := (&Discovery{UserDataDir: t.TempDir()}).Profiles(context.Background())
	require.ErrorIs(t, err, domain.ErrNoProfiles)

	_, err = (&Discovery{}).Profiles(context.Background())
	require.ErrorContains(t, err, "user data dir is not set")
}

func TestNewPrefersConfiguredList(t *testing.T) {
	t.Parallel()

	assert.IsType(t, Static{}, New([]domain.ProfileID{"Default"}, "/tmp"))
	assert.IsType(t, &Discovery{}, New(nil, "/tmp"))
}

func TestCookieDBPrefersNetworkLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, ok := CookieDB(dir, "Default")
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default", "Network"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Default", "Cookies"), nil, 0o600))
	got, ok := CookieDB(dir, "Default")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Default", "Cookies"), got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Default", "Network", "Cookies"), nil, 0o600))
	got, ok = CookieDB(dir, "Default")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Default", "Network", "Cookies"), got)
}
