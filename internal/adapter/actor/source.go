package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"

	"github.com/asynkron/protoactor-go/actor"
)

// ActorDiscoverySource asks the master actor for the current device
// snapshot. The master forwards the request to the discovery child, so the
// answer comes straight from the list owner.
type ActorDiscoverySource struct {
	rootContext *actor.RootContext
	master      *actor.PID
	timeout     time.Duration
}

func NewActorDiscoverySource(rootContext *actor.RootContext, master *actor.PID, timeout time.Duration) *ActorDiscoverySource {
	return &ActorDiscoverySource{
		rootContext: rootContext,
		master:      master,
		timeout:     timeout,
	}
}

func (s *ActorDiscoverySource) DiscoveredDevices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	result, err := s.rootContext.RequestFuture(s.master, domain.DiscoveredDevicesRequest{}, s.timeout).Result()
	if err != nil {
		return nil, err
	}
	response, ok := result.(domain.DiscoveredDevicesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected devices response type %T", result)
	}
	if response.HasResponseError() {
		return nil, response.GetResponseError()
	}
	return response.Devices, nil
}

var _ port.DiscoverySource = (*ActorDiscoverySource)(nil)
