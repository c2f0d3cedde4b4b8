package domain

const (
	ACTOR_ID_MASTER    = "master"
	ACTOR_ID_DISCOVERY = "discovery"
	ACTOR_ID_COMMAND   = "command"
	ACTOR_ID_MQTT      = "mqtt"
)

type DiscoveredDevicesRequest struct {
	ActorRequestMixIn
}

type DiscoveredDevicesResponse struct {
	ActorResponseMixIn
	Devices []DeviceDescriptor
}

type ExecuteCommandRequest struct {
	ActorRequestMixIn
	DeviceId string
	Command  CommandID
}

type ExecuteCommandResponse struct {
	ActorResponseMixIn
	DeviceId string
	Command  CommandID
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
