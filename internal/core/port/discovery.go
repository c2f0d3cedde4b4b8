package port

import (
	"context"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
)

// DiscoverySource exposes the current set of confirmed devices.
type DiscoverySource interface {
	DiscoveredDevices(ctx context.Context) ([]domain.DeviceDescriptor, error)
}

// ServiceEvent is one service announcement seen on the LAN.
type ServiceEvent struct {
	Instance  string
	Addresses []string
}

// ServiceBrowser watches the LAN for control service announcements and
// delivers them on events until ctx is done.
type ServiceBrowser interface {
	Browse(ctx context.Context, events chan<- ServiceEvent) error
}
