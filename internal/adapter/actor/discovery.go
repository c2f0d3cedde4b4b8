package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// DiscoveryActor owns the list of confirmed devices. Service announcements
// stream in from the browser, each candidate is confirmed with a control
// handshake before it becomes visible, and snapshot reads are answered in
// every state so a slow handshake never blocks a caller.
type DiscoveryActor struct {
	behavior       actor.Behavior
	stash          *actorutil.Stash
	browser        port.ServiceBrowser
	clientFactory  service.ControlClientFactory
	connectTimeout time.Duration
	eventStream    *eventstream.EventStream
	cancelBrowse   context.CancelFunc

	devices   []domain.DeviceDescriptor
	confirmed map[string]bool
	logger    *zap.Logger
}

type serviceDiscovered struct {
	event port.ServiceEvent
}

type handshakeResult struct {
	instance string
	device   *domain.DeviceDescriptor
	err      error
}

func NewDiscoveryActor(browser port.ServiceBrowser, clientFactory service.ControlClientFactory,
	connectTimeout time.Duration, eventStream *eventstream.EventStream, logger *zap.Logger) *DiscoveryActor {
	act := &DiscoveryActor{
		browser:        browser,
		clientFactory:  clientFactory,
		connectTimeout: connectTimeout,
		eventStream:    eventStream,
		behavior:       actor.NewBehavior(),
		stash:          &actorutil.Stash{},
		confirmed:      make(map[string]bool),
		logger:         actorutil.ActorLogger(domain.ACTOR_ID_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("discovery@starting started")
		if err := state.startBrowse(ctx); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.stopBrowse()
	default:
		state.logger.Debug("discovery@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DiscoveryActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("discovery@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DISCOVERY,
			Healthy: true,
			State:   "idle",
		})
	case domain.DiscoveredDevicesRequest:
		state.logger.Debug("discovery@default DiscoveredDevicesRequest")
		actorutil.ForRequest(msg).Respond(ctx, domain.DiscoveredDevicesResponse{
			Devices: state.snapshot(),
		})
	case serviceDiscovered:
		state.handleAnnouncement(ctx, msg.event)
	case *actor.Restarting:
		state.stopBrowse()
	case *actor.Stopping:
		state.stopBrowse()
	default:
		state.logger.Debug("discovery@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DiscoveryActor) WaitingHandshake(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case handshakeResult:
		if msg.err != nil {
			// not a controllable device or not reachable, keep it unlisted
			state.logger.Debug("discovery@handshake rejected", zap.String("instance", msg.instance),
				zap.Error(msg.err))
		} else {
			state.confirmDevice(msg.instance, *msg.device)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		state.logger.Debug("discovery@handshake ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DISCOVERY,
			Healthy: true,
			State:   "handshake",
		})
	case domain.DiscoveredDevicesRequest:
		state.logger.Debug("discovery@handshake DiscoveredDevicesRequest")
		actorutil.ForRequest(msg).Respond(ctx, domain.DiscoveredDevicesResponse{
			Devices: state.snapshot(),
		})
	case *actor.Restarting:
		state.stopBrowse()
	case *actor.Stopping:
		state.stopBrowse()
	default:
		state.logger.Debug("discovery@handshake stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DiscoveryActor) startBrowse(ctx actor.Context) error {
	browseCtx, cancel := context.WithCancel(context.Background())
	state.cancelBrowse = cancel

	events := make(chan port.ServiceEvent, 8)
	go func() {
		for {
			select {
			case event := <-events:
				ctx.Send(ctx.Self(), serviceDiscovered{event: event})
			case <-browseCtx.Done():
				return
			}
		}
	}()

	return state.browser.Browse(browseCtx, events)
}

func (state *DiscoveryActor) stopBrowse() {
	if state.cancelBrowse != nil {
		state.cancelBrowse()
		state.cancelBrowse = nil
	}
}

func (state *DiscoveryActor) handleAnnouncement(ctx actor.Context, event port.ServiceEvent) {
	if state.confirmed[event.Instance] {
		state.logger.Debug("discovery@default announcement for known instance", zap.String("instance", event.Instance))
		return
	}
	if len(event.Addresses) == 0 {
		state.logger.Debug("discovery@default announcement without addresses", zap.String("instance", event.Instance))
		return
	}
	state.logger.Debug("discovery@default handshake candidate", zap.String("instance", event.Instance),
		zap.Strings("addresses", event.Addresses))

	address := event.Addresses[0]
	actorutil.NewBackgroundTask(ctx, func() (*handshakeResult, error) {
		return state.handshake(event.Instance, address)
	}).Recover(func(err error) handshakeResult {
		return handshakeResult{instance: event.Instance, err: err}
	}).WithTimeout(state.connectTimeout + time.Second).PipeTo(ctx.Self())

	state.behavior.BecomeStacked(state.WaitingHandshake)
}

func (state *DiscoveryActor) handshake(instance, address string) (*handshakeResult, error) {
	client := state.clientFactory(address)
	identity, err := client.Connect(context.Background())
	if err != nil {
		return nil, err
	}
	return &handshakeResult{
		instance: instance,
		device: &domain.DeviceDescriptor{
			Name:    identity.Name,
			Address: identity.Host,
		},
	}, nil
}

func (state *DiscoveryActor) confirmDevice(instance string, device domain.DeviceDescriptor) {
	// instances are confirmed at most once, two instance names resolving to
	// the same address stay two entries
	state.confirmed[instance] = true
	state.devices = append(state.devices, device)
	state.logger.Info("discovery: device confirmed", zap.String("instance", instance),
		zap.String("name", device.Name), zap.String("address", device.Address))
	state.eventStream.Publish(domain.DeviceDiscoveredEvent{
		DeviceEventMixIn: domain.DeviceEventMixIn{
			Descriptor: device,
		},
		Instance: instance,
	})
}

func (state *DiscoveryActor) snapshot() []domain.DeviceDescriptor {
	devices := make([]domain.DeviceDescriptor, len(state.devices))
	copy(devices, state.devices)
	return devices
}
