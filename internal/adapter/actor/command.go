package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

const (
	COMMAND_ACTOR_ID = "command"
)

// CommandActor executes remote commands against a device. Execution runs on a
// background task so the mailbox never blocks on device IO; while a command is
// in flight the actor stacks into WaitingDevice and stashes everything else,
// so commands for the same bridge are serialized.
type CommandActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	registry *service.DeviceRegistry
	timeout  time.Duration
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewCommandActor(registry *service.DeviceRegistry, timeout time.Duration, logger *zap.Logger) *CommandActor {
	act := &CommandActor{
		registry: registry,
		timeout:  timeout,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger("command", logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *CommandActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *CommandActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("command@starting started")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("command@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CommandActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("command@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      COMMAND_ACTOR_ID,
			Healthy: true,
			State:   "idle",
		})
	case domain.ExecuteCommandRequest:
		state.logger.Debug("command@default: ExecuteCommandRequest",
			zap.String("device", msg.DeviceId), zap.Int("command", int(msg.Command)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.ExecuteCommandResponse, error) {
			return state.executeCommand(msg)
		}), mapTaskResult[domain.ExecuteCommandResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.ExecuteCommandResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
					DeviceId: msg.DeviceId,
					Command:  msg.Command,
				},
				replyTo: sender,
			}
		}).WithTimeout(state.timeout + time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	default:
		state.logger.Debug("command@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *CommandActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("command@WaitingDevice backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("command@WaitingDevice stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *CommandActor) executeCommand(req domain.ExecuteCommandRequest) (*domain.ExecuteCommandResponse, error) {
	driver, err := a.registry.CreateDriver(context.Background(), req.DeviceId)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	if err := driver.Execute(context.Background(), req.Command); err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.ExecuteCommandResponse{
		DeviceId: req.DeviceId,
		Command:  req.Command,
	}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
