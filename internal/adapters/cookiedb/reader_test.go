package cookiedb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sso-harvest/internal/domain"
)

func writeCookieDB(t *testing.T, path string, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(`CREATE TABLE cookies (host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB)`)
	require.NoError(t, err)
	for _, row := range rows {
		_, err := db.Exec(`INSERT INTO cookies (host_key, name, path, value, encrypted_value) VALUES (?, ?, ?, ?, ?)`, row...)
		require.NoError(t, err)
	}
}

func TestReadCookiesFiltersByHostAndName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCookieDB(t, filepath.Join(dir, "Default", "Network", "Cookies"), [][]any{
		{".grok.com", "sso", "/", "", []byte("v10-encrypted-blob")},
		{"accounts.x.com", "sso", "/", "plain-token", []byte{}},
		{".grok.com", "theme", "/", "dark", []byte{}},
		{".example.com", "sso", "/", "other", []byte{}},
		{".notgrok.com", "sso", "/", "spoof", []byte{}},
	})

	got, err := NewReader(dir).ReadCookies(context.Background(), "Default", []string{".grok.com", "x.com"}, "sso")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.StoredCookie{Profile: "Default", Host: ".grok.com", Name: "sso", Path: "/", EncryptedLen: 18}, got[0])
	assert.True(t, got[0].Encrypted())
	assert.Equal(t, "plain-token", got[1].Value)
	assert.Zero(t, got[1].EncryptedLen)
}

func TestReadCookiesLegacyLayoutWithoutFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCookieDB(t, filepath.Join(dir, "Profile 1", "Cookies"), [][]any{
		{".grok.com", "sso", "/", "a", nil},
		{".x.com", "auth", "/", "b", nil},
	})

	got, err := NewReader(dir).ReadCookies(context.Background(), "Profile 1", nil, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadCookiesMissingDatabase(t *testing.T) {
	t.Parallel()

	_, err := NewReader(t.TempDir()).ReadCookies(context.Background(), "Profile 9", nil, "sso")
	require.ErrorIs(t, err, ErrNoDatabase)
}

func TestHostWhereClause(t *testing.T) {
	t.Parallel()

	where, args := hostWhereClause([]string{" .Grok.com ", ""})
	assert.Equal(t, "host_key = ? OR host_key = ? OR host_key LIKE ?", where)
	assert.Equal(t, []any{"grok.com", ".grok.com", "%.grok.com"}, args)

	where, args = hostWhereClause(nil)
	assert.Equal(t, "1=1", where)
	assert.Nil(t, args)
}
