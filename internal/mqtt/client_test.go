package mqtt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/picontrol/eversolo2hub/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestDeviceCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/device/10.0.0.15/command/set"
	r := deviceCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "10.0.0.15", "device extract")
}

func TestDeviceCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/device/10.0.0.15/command/result"
	r := deviceCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestDeviceConfigTopicNoMatch(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/device/10.0.0.15/config"
	r := deviceCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestBridgeStateTopic(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(bridgeStateTopic("eversolo2hub"), "eversolo2hub/bridge/state")
}

func TestDeviceAnnouncementPayload(t *testing.T) {

	assert := assert.New(t)

	payload, err := DeviceAnnouncementPayload(domain.DeviceDescriptor{
		Name:    "Living Room DMP-A6",
		Address: "10.0.0.15",
	})
	assert.NoError(err)

	var decoded DeviceAnnouncement
	assert.NoError(json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(decoded.Name, "Living Room DMP-A6")
	assert.Equal(decoded.DeviceId, "10.0.0.15")
	assert.Equal(decoded.Driver, domain.DRIVER_DISPLAY_NAME)
	assert.NotEmpty(decoded.Version)
}

func TestCommandResultPayload(t *testing.T) {

	assert := assert.New(t)

	payload, err := CommandResultPayload(domain.COMMAND_ID_PLAY_PAUSE, nil)
	assert.NoError(err)
	assert.JSONEq(`{"command": 6, "success": true}`, payload)

	payload, err = CommandResultPayload(domain.COMMAND_ID_PLAY_PAUSE, errors.New("device unreachable"))
	assert.NoError(err)

	var decoded CommandResult
	assert.NoError(json.Unmarshal([]byte(payload), &decoded))
	assert.False(decoded.Success)
	assert.NotEmpty(decoded.Error)
}
