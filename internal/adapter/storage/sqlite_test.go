package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore(t *testing.T) (store *SQLiteDeviceStore, path string) {
	path = filepath.Join(t.TempDir(), "eversolo.cache")
	logger := zap.Must(zap.NewDevelopment())
	s, err := CreateSQLiteDeviceStore(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s.(*SQLiteDeviceStore), path
}

func TestStoreRoundTrip(t *testing.T) {

	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cached_devices", []byte(`[{"name":"A","device_id":"10.0.0.2"}]`)))

	value, err := store.Get(ctx, "cached_devices")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"A","device_id":"10.0.0.2"}]`, string(value))
}

func TestStoreOverwrite(t *testing.T) {

	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("one")))
	require.NoError(t, store.Set(ctx, "key", []byte("two")))

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "two", string(value))
}

func TestStoreMissingKey(t *testing.T) {

	store, _ := testStore(t)

	value, err := store.Get(context.Background(), "never_written")
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestStoreDelete(t *testing.T) {

	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value")))
	require.NoError(t, store.Delete(ctx, "key"))

	value, err := store.Get(ctx, "key")
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestStoreSurvivesReopen(t *testing.T) {

	store, path := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cached_devices", []byte("[]")))
	require.NoError(t, store.Close())

	logger := zap.Must(zap.NewDevelopment())
	reopened, err := CreateSQLiteDeviceStore(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, "cached_devices")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}
