package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/internal/util/actorutil"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type commandTestSource struct {
	devices []domain.DeviceDescriptor
}

func (s *commandTestSource) DiscoveredDevices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	return s.devices, nil
}

type memoryStore struct {
	entries map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string][]byte{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.entries[key], nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.entries[key] = value
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}

func testCommandRegistry(client *eversolo.TestControlClient, logger *zap.Logger) *service.DeviceRegistry {
	source := &commandTestSource{
		devices: []domain.DeviceDescriptor{{Name: "DMP-A6", Address: client.Addr}},
	}
	factory := func(address string) eversolo.ControlClient {
		return client
	}
	return service.NewDeviceRegistry(source, newMemoryStore(), nil, factory, logger)
}

func TestCommandActorExecutes(t *testing.T) {

	assert := assert.New(t)

	client := eversolo.CreateTestControlClient("10.0.0.15")
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registry := testCommandRegistry(client, logger)
	props := actor.PropsFromProducer(func() actor.Actor { return NewCommandActor(registry, 2*time.Second, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	healthResult, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health := healthResult.(domain.ActorHealthResponse)
	assert.Equal(COMMAND_ACTOR_ID, health.Id)
	assert.True(health.Healthy)

	msg := domain.ExecuteCommandRequest{DeviceId: "10.0.0.15", Command: domain.COMMAND_ID_PLAY_PAUSE}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.ExecuteCommandResponse)

	assert.False(resp.HasResponseError(), "command result")
	assert.Equal("10.0.0.15", resp.DeviceId, "device id")
	assert.Equal(domain.COMMAND_ID_PLAY_PAUSE, resp.Command, "command id")
	assert.Equal([]string{eversolo.PathPlayOrPause}, client.ExecutedPaths(), "executed paths")

	msg = domain.ExecuteCommandRequest{DeviceId: "10.0.0.15", Command: domain.COMMAND_ID_PLAY_NEXT}
	result, err = context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp = result.(domain.ExecuteCommandResponse)

	assert.False(resp.HasResponseError(), "command result")
	assert.Equal([]string{eversolo.PathPlayOrPause, eversolo.PathPlayNext}, client.ExecutedPaths(), "executed paths")

	context.Stop(pid)

	as.Shutdown()
}

func TestCommandActorUnknownDevice(t *testing.T) {

	assert := assert.New(t)

	client := eversolo.CreateTestControlClient("10.0.0.15")
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registry := testCommandRegistry(client, logger)
	props := actor.PropsFromProducer(func() actor.Actor { return NewCommandActor(registry, 2*time.Second, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.ExecuteCommandRequest{DeviceId: "10.9.9.9", Command: domain.COMMAND_ID_PLAY_PAUSE}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.ExecuteCommandResponse)

	assert.True(resp.HasResponseError(), "command result")
	assert.True(errors.Is(resp.GetResponseError(), domain.ErrDeviceNotFound), "device not found")
	assert.Empty(client.ExecutedPaths(), "executed paths")

	context.Stop(pid)

	as.Shutdown()
}

func TestCommandActorUnknownCommand(t *testing.T) {

	assert := assert.New(t)

	client := eversolo.CreateTestControlClient("10.0.0.15")
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registry := testCommandRegistry(client, logger)
	props := actor.PropsFromProducer(func() actor.Actor { return NewCommandActor(registry, 2*time.Second, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.ExecuteCommandRequest{DeviceId: "10.0.0.15", Command: domain.CommandID(99)}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.ExecuteCommandResponse)

	assert.True(resp.HasResponseError(), "command result")
	assert.True(errors.Is(resp.GetResponseError(), domain.ErrCommandNotFound), "command not found")

	context.Stop(pid)

	as.Shutdown()
}

func TestCommandActorDeviceFailure(t *testing.T) {

	assert := assert.New(t)

	client := eversolo.CreateTestControlClient("10.0.0.15")
	client.ExecErr = &eversolo.NetworkError{URL: "http://10.0.0.15:9529", Err: errors.New("connection refused")}
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registry := testCommandRegistry(client, logger)
	props := actor.PropsFromProducer(func() actor.Actor { return NewCommandActor(registry, 2*time.Second, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.ExecuteCommandRequest{DeviceId: "10.0.0.15", Command: domain.COMMAND_ID_PLAY_PAUSE}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.ExecuteCommandResponse)

	assert.True(resp.HasResponseError(), "command result")
	var networkErr *eversolo.NetworkError
	assert.True(errors.As(resp.GetResponseError(), &networkErr), "network error")

	context.Stop(pid)

	as.Shutdown()
}
