package service

import (
	"context"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	"go.uber.org/zap"
)

// Driver exposes the remote-control surface of one bound device.
type Driver struct {
	device   domain.DeviceDescriptor
	client   eversolo.ControlClient
	infrared port.InfraredSender
	catalog  []domain.CommandSpec
	logger   *zap.Logger
}

func NewDriver(device domain.DeviceDescriptor, client eversolo.ControlClient,
	infrared port.InfraredSender, logger *zap.Logger) *Driver {
	return &Driver{
		device:   device,
		client:   client,
		infrared: infrared,
		catalog:  BuildCatalog(),
		logger:   logger.With(zap.String("device", device.Address)),
	}
}

func (d *Driver) Device() domain.DeviceDescriptor {
	return d.device
}

func (d *Driver) Commands() []domain.CommandSpec {
	return d.catalog
}

func (d *Driver) Command(id domain.CommandID) (domain.CommandSpec, error) {
	return LookupCommand(d.catalog, id)
}

// Execute runs one command against the bound device. Unknown ids return
// ErrCommandNotFound; device failures surface as network/protocol errors.
func (d *Driver) Execute(ctx context.Context, id domain.CommandID) error {
	spec, err := d.Command(id)
	if err != nil {
		return err
	}
	d.logger.Debug("execute command", zap.Int("command", int(spec.Id)), zap.String("title", spec.Title))
	return ExecuteAction(ctx, d.client, d.infrared, spec)
}

// IsReady reports whether the device currently answers the control
// handshake. Every failure kind collapses to false.
func (d *Driver) IsReady(ctx context.Context) bool {
	if _, err := d.client.Connect(ctx); err != nil {
		d.logger.Debug("readiness probe failed", zap.Error(err))
		return false
	}
	return true
}

func (d *Driver) RemoteLayout() domain.RemoteLayout {
	return Layout()
}

func (d *Driver) RemoteLayoutSize() (int, int) {
	return LayoutSize()
}
