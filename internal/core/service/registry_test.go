package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testDiscoverySource struct {
	devices []domain.DeviceDescriptor
	err     error
}

func (s *testDiscoverySource) DiscoveredDevices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.devices, nil
}

type testDeviceStore struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newTestDeviceStore() *testDeviceStore {
	return &testDeviceStore{entries: map[string][]byte{}}
}

func (s *testDeviceStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.entries[key], nil
}

func (s *testDeviceStore) Set(ctx context.Context, key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

func (s *testDeviceStore) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func (s *testDeviceStore) Close() error {
	return nil
}

func testRegistry(source *testDiscoverySource, store *testDeviceStore) *DeviceRegistry {
	logger := zap.Must(zap.NewDevelopment())
	factory := func(address string) eversolo.ControlClient {
		return eversolo.CreateTestControlClient(address)
	}
	return NewDeviceRegistry(source, store, nil, factory, logger)
}

func testDevices() []domain.DeviceDescriptor {
	return []domain.DeviceDescriptor{
		{Name: "Living Room DMP-A6", Address: "10.0.0.15"},
		{Name: "Studio DMP-A6", Address: "10.0.0.23"},
	}
}

func TestListDevicesLiveAndCacheRoundTrip(t *testing.T) {

	source := &testDiscoverySource{devices: testDevices()}
	store := newTestDeviceStore()
	registry := testRegistry(source, store)

	live, err := registry.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDevices(), live)

	// snapshot got persisted in the documented wire format
	raw := store.entries["cached_devices"]
	require.NotNil(t, raw)
	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "10.0.0.15", decoded[0]["device_id"])
	assert.Equal(t, "Living Room DMP-A6", decoded[0]["name"])

	// with discovery gone quiet, the cache serves the same set
	source.devices = nil
	cached, err := registry.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, cached)
}

func TestListDevicesEmptyWithoutCache(t *testing.T) {

	registry := testRegistry(&testDiscoverySource{}, newTestDeviceStore())

	devices, err := registry.ListDevices(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, devices)
}

func TestListDevicesPersistErrorStillServesLive(t *testing.T) {

	source := &testDiscoverySource{devices: testDevices()}
	store := newTestDeviceStore()
	store.setErr = errors.New("disk full")
	registry := testRegistry(source, store)

	devices, err := registry.ListDevices(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, testDevices(), devices)
}

func TestListDevicesSourceErrorServesCache(t *testing.T) {

	store := newTestDeviceStore()
	seed := testRegistry(&testDiscoverySource{devices: testDevices()}, store)
	require.NoError(t, seed.PersistSnapshot(context.Background(), testDevices()))

	registry := testRegistry(&testDiscoverySource{err: errors.New("actor timeout")}, store)
	devices, err := registry.ListDevices(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, testDevices(), devices)
}

func TestListDevicesCorruptCache(t *testing.T) {

	store := newTestDeviceStore()
	store.entries["cached_devices"] = []byte("{not json")
	registry := testRegistry(&testDiscoverySource{}, store)

	_, err := registry.ListDevices(context.Background())
	assert.Error(t, err)
}

func TestEmptySnapshotNeverOverwritesCache(t *testing.T) {

	store := newTestDeviceStore()
	registry := testRegistry(&testDiscoverySource{}, store)

	require.NoError(t, registry.PersistSnapshot(context.Background(), testDevices()))
	before := store.entries["cached_devices"]

	require.NoError(t, registry.PersistSnapshot(context.Background(), nil))
	assert.Equal(t, before, store.entries["cached_devices"])
}

func TestGetDevice(t *testing.T) {

	registry := testRegistry(&testDiscoverySource{devices: testDevices()}, newTestDeviceStore())

	device, err := registry.GetDevice(context.Background(), "10.0.0.23")
	require.NoError(t, err)
	assert.Equal(t, "Studio DMP-A6", device.Name)

	_, err = registry.GetDevice(context.Background(), "10.0.0.99")
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
}

func TestCreateDriver(t *testing.T) {

	registry := testRegistry(&testDiscoverySource{devices: testDevices()}, newTestDeviceStore())

	driver, err := registry.CreateDriver(context.Background(), "10.0.0.15")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.15", driver.Device().Address)
	assert.True(t, driver.IsReady(context.Background()))

	_, err = registry.CreateDriver(context.Background(), "10.0.0.99")
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
}

func TestPairingIsANoOp(t *testing.T) {

	registry := testRegistry(&testDiscoverySource{devices: testDevices()}, newTestDeviceStore())
	device := testDevices()[0]

	first, providesPin := registry.StartPairing(context.Background(), device, "living room remote")
	assert.NotEmpty(t, first)
	assert.False(t, providesPin)

	second, _ := registry.StartPairing(context.Background(), device, "living room remote")
	assert.NotEqual(t, first, second)

	assert.True(t, registry.FinalizePairing(context.Background(), first, "", ""))
}

func TestDescriptor(t *testing.T) {

	registry := testRegistry(&testDiscoverySource{}, newTestDeviceStore())

	descriptor := registry.Descriptor()
	assert.Equal(t, "8923777f-9761-4a9d-9747-479f8913f503", descriptor.Id)
	assert.Equal(t, "Eversolo DMP-A6", descriptor.DisplayName)
	assert.Equal(t, domain.AUTH_METHOD_NONE, descriptor.AuthenticationMethod)
	assert.False(t, descriptor.RequiresPairing)
	assert.NotEmpty(t, descriptor.Version)
}
