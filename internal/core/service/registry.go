package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cachedDevicesKey = "cached_devices"

// ControlClientFactory builds a control client bound to one device address.
type ControlClientFactory func(address string) eversolo.ControlClient

// DeviceRegistry resolves devices from discovery or the persisted cache and
// builds drivers bound to them.
type DeviceRegistry struct {
	source        port.DiscoverySource
	store         port.DeviceStore
	infrared      port.InfraredSender
	clientFactory ControlClientFactory
	logger        *zap.Logger
}

func NewDeviceRegistry(source port.DiscoverySource, store port.DeviceStore,
	infrared port.InfraredSender, clientFactory ControlClientFactory, logger *zap.Logger) *DeviceRegistry {
	return &DeviceRegistry{
		source:        source,
		store:         store,
		infrared:      infrared,
		clientFactory: clientFactory,
		logger:        logger.With(zap.String("service", "registry")),
	}
}

// ListDevices returns the live discovery snapshot when it holds anything,
// persisting it as the new cache entry. Otherwise it serves the last
// persisted snapshot, or an empty list when none exists yet.
func (r *DeviceRegistry) ListDevices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	live, err := r.source.DiscoveredDevices(ctx)
	if err != nil {
		r.logger.Warn("discovery snapshot failed, serving cache", zap.Error(err))
		return r.cachedDevices(ctx)
	}
	if len(live) > 0 {
		if err := r.PersistSnapshot(ctx, live); err != nil {
			r.logger.Warn("could not persist device snapshot", zap.Error(err))
		}
		return live, nil
	}
	return r.cachedDevices(ctx)
}

// GetDevice resolves one device by id. Ids are device addresses.
func (r *DeviceRegistry) GetDevice(ctx context.Context, deviceId string) (domain.DeviceDescriptor, error) {
	devices, err := r.ListDevices(ctx)
	if err != nil {
		return domain.DeviceDescriptor{}, err
	}
	for _, device := range devices {
		if device.Address == deviceId {
			return device, nil
		}
	}
	return domain.DeviceDescriptor{}, fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, deviceId)
}

// CreateDriver builds a driver facade bound to one known device.
func (r *DeviceRegistry) CreateDriver(ctx context.Context, deviceId string) (*Driver, error) {
	device, err := r.GetDevice(ctx, deviceId)
	if err != nil {
		return nil, err
	}
	return NewDriver(device, r.clientFactory(device.Address), r.infrared, r.logger), nil
}

// PersistSnapshot stores a device snapshot as the cache entry. Empty
// snapshots never overwrite the cache.
func (r *DeviceRegistry) PersistSnapshot(ctx context.Context, devices []domain.DeviceDescriptor) error {
	if len(devices) == 0 {
		return nil
	}
	encoded, err := json.Marshal(devices)
	if err != nil {
		return fmt.Errorf("encode device cache: %w", err)
	}
	return r.store.Set(ctx, cachedDevicesKey, encoded)
}

// StartPairing opens a pairing session. These devices pair implicitly on
// first connect, so the token is never validated and no PIN is shown.
func (r *DeviceRegistry) StartPairing(ctx context.Context, device domain.DeviceDescriptor,
	remoteName string) (pairingRequest string, deviceProvidesPin bool) {
	r.logger.Debug("start pairing", zap.String("device", device.Address), zap.String("remote", remoteName))
	return uuid.NewString(), false
}

// FinalizePairing always reports success.
func (r *DeviceRegistry) FinalizePairing(ctx context.Context, pairingRequest string,
	credentials string, devicePin string) bool {
	return true
}

// Descriptor returns the identity this driver reports to hubs.
func (r *DeviceRegistry) Descriptor() domain.DriverDescriptor {
	return domain.DriverDescriptor{
		Id:                   domain.DRIVER_ID,
		DisplayName:          domain.DRIVER_DISPLAY_NAME,
		Description:          domain.DRIVER_DESCRIPTION,
		AuthenticationMethod: domain.AUTH_METHOD_NONE,
		RequiresPairing:      false,
		Version:              versioninfo.Short(),
	}
}

func (r *DeviceRegistry) cachedDevices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	raw, err := r.store.Get(ctx, cachedDevicesKey)
	if err != nil {
		return nil, fmt.Errorf("read device cache: %w", err)
	}
	if raw == nil {
		return []domain.DeviceDescriptor{}, nil
	}
	var devices []domain.DeviceDescriptor
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("decode device cache: %w", err)
	}
	return devices, nil
}
