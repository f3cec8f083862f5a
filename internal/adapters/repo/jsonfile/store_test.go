package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sso-harvest/internal/domain"
)

func TestSaveWritesIndentedArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "extracted_tokens.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	tokens := []domain.ExtractedToken{
		{Token: "t1", Domain: ".grok.com", Profile: "Default"},
		{Token: "t2", Domain: ".x.com", Profile: "Profile 1"},
	}
	require.NoError(t, store.Save(context.Background(), tokens))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "token": "t1",
    "domain": ".grok.com",
    "profile": "Default"
  },
  {
    "token": "t2",
    "domain": ".x.com",
    "profile": "Profile 1"
  }
]
`, string(raw))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens, loaded)
}

func TestSaveEmptyWritesEmptyArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), []domain.ExtractedToken{{Token: "old", Profile: "Default"}}))
	require.NoError(t, store.Save(context.Background(), nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(context.Background(), []domain.ExtractedToken{{Token: strconv.Itoa(i), Profile: "Default"}}))
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"token":"x"}`), 0o600))
	_, err = store.Load(context.Background())
	require.ErrorContains(t, err, "decode results file")

	require.NoError(t, os.WriteFile(store.Path(), []byte(`[{"token":"","profile":"Default"}]`), 0o600))
	_, err = store.Load(context.Background())
	require.ErrorContains(t, err, "results entry 0")
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewStore("")
	require.Error(t, err)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "out.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Save(ctx, nil), context.Canceled)
}
