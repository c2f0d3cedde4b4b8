package actor

import (
	"testing"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/mqtt"
	"github.com/picontrol/eversolo2hub/internal/util"
	"github.com/picontrol/eversolo2hub/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, logger) })
	pid := context.Spawn(props)

	time.Sleep(2 * time.Second)

	msg := domain.ActorHealthRequest{}
	result, err := context.RequestFuture(pid, msg, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.NotNil(t, resp)
	assert.Equal(t, domain.ACTOR_ID_MQTT, resp.Id)
	assert.True(t, resp.Healthy)

	payload, err := mqtt.CommandResultPayload(domain.COMMAND_ID_PLAY_PAUSE, nil)
	assert.NoError(t, err)

	context.Send(pid, domain.PublishMessageRequest{
		Topic:   mqtt.DeviceCommandResultTopic(cfg.MQTT.BaseTopic, "192.168.1.50"),
		Payload: payload,
	})

	time.Sleep(1 * time.Second)

	context.Stop(pid)

	time.Sleep(1 * time.Second)

	as.Shutdown()
}
