package actor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	adactor "github.com/picontrol/eversolo2hub/internal/adapter/actor"
	"github.com/picontrol/eversolo2hub/internal/config"
	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/internal/mqtt"
	. "github.com/picontrol/eversolo2hub/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type DiscoveryActorProvider func(*eventstream.EventStream) *adactor.DiscoveryActor

type CommandActorProvider func(*service.DeviceRegistry) *adactor.CommandActor

type RegistryProvider func(port.DiscoverySource) *service.DeviceRegistry

type cacheRefreshTick struct {
}

type persistResult struct {
	err error
}

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck     healthCheckResult
	eventStream            *eventstream.EventStream
	registry               *service.DeviceRegistry
	scheduler              *scheduler.TimerScheduler
	discoveryActor         *actor.PID
	commandActor           *actor.PID
	mqttActor              *actor.PID
	discoveryActorProvider DiscoveryActorProvider
	commandActorProvider   CommandActorProvider
	mqttActorProvider      MQTTActorProvider
	registryProvider       RegistryProvider
	logger                 *zap.Logger
}

type healthCheckResult struct {
	discoveryActorHealthy bool
	commandActorHealthy   bool
	mqttActorHealthy      bool
	mqttExpected          bool
	checksReceived        int
	respondTo             *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, discoveryActorProvider DiscoveryActorProvider,
	commandActorProvider CommandActorProvider, mqttActorProvider MQTTActorProvider,
	registryProvider RegistryProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:                 config,
		behavior:               actor.NewBehavior(),
		stash:                  &Stash{},
		logger:                 ActorLogger("master", logger),
		eventStream:            &eventstream.EventStream{},
		discoveryActorProvider: discoveryActorProvider,
		commandActorProvider:   commandActorProvider,
		mqttActorProvider:      mqttActorProvider,
		registryProvider:       registryProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset(state.config.MQTT.Enable)

		// the registry reads snapshots through this actor tree
		source := adactor.NewActorDiscoverySource(ctx.ActorSystem().Root, ctx.Self(), 4*time.Second)
		state.registry = state.registryProvider(source)

		// start Discovery child
		discoveryActorPID, err := state.startDiscoveryActor(ctx)
		if err != nil {
			panic(err)
		}
		state.discoveryActor = discoveryActorPID

		// start Command child
		commandActorPID, err := state.startCommandActor(ctx)
		if err != nil {
			panic(err)
		}
		state.commandActor = commandActorPID

		// start MQTT child
		if state.config.MQTT.Enable {
			mqttActorPID, err := state.startMQTTActor(ctx)
			if err != nil {
				panic(err)
			}
			state.mqttActor = mqttActorPID
		}

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.armCacheRefresh(ctx)

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset(state.config.MQTT.Enable)
		state.currentHealthCheck.respondTo = ctx.Sender()
		// Discovery Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.discoveryActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_DISCOVERY,
				Healthy: false,
			}
		})
		// Command Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.commandActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_COMMAND,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		if state.config.MQTT.Enable {
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      domain.ACTOR_ID_MQTT,
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.DiscoveredDevicesRequest:
		// the discovery child owns the list, let it answer the caller directly
		state.logger.Debug("master@default DiscoveredDevicesRequest")
		ctx.Forward(state.discoveryActor)
	case adactor.ParsedCommand:
		// redirect parsedCommand to actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
			if err == nil && cmd != nil {
				switch pcmd := cmd.(type) {
				case domain.ExecuteCommandRequest:
					ctx.Request(state.commandActor, pcmd)
				}
			}
		}
	case domain.ExecuteCommandResponse:
		// outcome of a broker-initiated command, report it on the result topic
		state.publishCommandResult(ctx, msg)
	case cacheRefreshTick:
		state.logger.Debug("master@default cacheRefreshTick")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.discoveryActor, domain.DiscoveredDevicesRequest{}, 2*time.Second), func(err error) any {
			return domain.DiscoveredDevicesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.DiscoveredDevicesResponse:
		// snapshot requested by the cache refresh tick
		state.persistDevices(ctx, msg)
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_DISCOVERY) {
			state.logger.Error("master@default discovery error")
			panic(errors.New("discovery terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_DISCOVERY {
				state.currentHealthCheck.discoveryActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_COMMAND {
				state.currentHealthCheck.commandActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startDiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	discoveryProps := actor.PropsFromProducer(func() actor.Actor {
		return state.discoveryActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	discoveryActorPID, err := ctx.SpawnNamed(discoveryProps, domain.ACTOR_ID_DISCOVERY)
	if err != nil {
		return nil, err
	}

	return discoveryActorPID, nil
}

func (state *MasterOfPuppetsActor) startCommandActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	commandProps := actor.PropsFromProducer(func() actor.Actor {
		return state.commandActorProvider(state.registry)
	}, actor.WithSupervisor(supervisor))
	commandActorPID, err := ctx.SpawnNamed(commandProps, domain.ACTOR_ID_COMMAND)
	if err != nil {
		return nil, err
	}

	return commandActorPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterOfPuppetsActor) armCacheRefresh(ctx actor.Context) {
	interval := time.Duration(state.config.Discovery.CacheRefreshMillis) * time.Millisecond
	if interval <= 0 {
		return
	}
	state.scheduler.RequestOnce(interval, ctx.Self(), cacheRefreshTick{})
}

func (state *MasterOfPuppetsActor) persistDevices(ctx actor.Context, response domain.DiscoveredDevicesResponse) {
	defer state.armCacheRefresh(ctx)
	if response.HasResponseError() {
		state.logger.Warn("master@default cache refresh failed", zap.Error(response.GetResponseError()))
		return
	}
	devices := response.Devices
	NewBackgroundTaskNoError(ctx, func() *persistResult {
		return &persistResult{err: state.registry.PersistSnapshot(context.Background(), devices)}
	}).WithTimeout(5 * time.Second).OnError(func(err error) {
		state.logger.Warn("master@default cache persist failed", zap.Error(err))
	}).OnSuccess(func(result persistResult) {
		if result.err != nil {
			state.logger.Warn("master@default cache persist failed", zap.Error(result.err))
		}
	}).Run()
}

func (state *MasterOfPuppetsActor) publishCommandResult(ctx actor.Context, response domain.ExecuteCommandResponse) {
	if state.mqttActor == nil {
		return
	}
	payload, err := mqtt.CommandResultPayload(response.Command, response.GetResponseError())
	if err != nil {
		state.logger.Error("master@default could not encode command result", zap.Error(err))
		return
	}
	ctx.Send(state.mqttActor, domain.PublishMessageRequest{
		Topic:   mqtt.DeviceCommandResultTopic(state.config.MQTT.BaseTopic, response.DeviceId),
		Payload: payload,
	})
}

func (state *healthCheckResult) reset(mqttExpected bool) {
	state.discoveryActorHealthy = false
	state.commandActorHealthy = false
	state.mqttActorHealthy = false
	state.mqttExpected = mqttExpected
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	expected := 2
	if state.mqttExpected {
		expected = 3
	}
	return state.checksReceived == expected
}

func (state *healthCheckResult) allHealthy() bool {
	if state.mqttExpected && !state.mqttActorHealthy {
		return false
	}
	return state.discoveryActorHealthy && state.commandActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      "master",
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
