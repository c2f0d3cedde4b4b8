package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testIconStore(t *testing.T) (*IconStore, string) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle-power.png"), []byte("png-bytes"), 0o644))
	logger := zap.Must(zap.NewDevelopment())
	return CreateIconStore(dir, logger), dir
}

func TestIconLoad(t *testing.T) {

	store, _ := testIconStore(t)

	blob, err := store.Icon("toggle-power")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), blob)
}

func TestIconMemoized(t *testing.T) {

	store, dir := testIconStore(t)

	_, err := store.Icon("toggle-power")
	require.NoError(t, err)

	// later file changes are not picked up
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle-power.png"), []byte("changed"), 0o644))
	blob, err := store.Icon("toggle-power")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), blob)
}

func TestIconUnknown(t *testing.T) {

	store, _ := testIconStore(t)

	_, err := store.Icon("no-such-icon")
	assert.ErrorIs(t, err, ErrIconNotFound)
}

func TestIconRejectsBadNames(t *testing.T) {

	store, _ := testIconStore(t)

	for _, name := range []string{"../secrets", "toggle power", "Toggle-Power", ""} {
		_, err := store.Icon(name)
		assert.ErrorIs(t, err, ErrIconNotFound, "name %q", name)
	}
}

func TestIconStoreDisabled(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())
	store := CreateIconStore("", logger)

	assert.False(t, store.Enabled())
	_, err := store.Icon("toggle-power")
	assert.ErrorIs(t, err, ErrIconNotFound)
}
