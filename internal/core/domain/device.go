package domain

// DeviceDescriptor identifies a confirmed streamer on the LAN. Address is
// the host the control API answered on and doubles as the stable device id.
// The JSON field names are the persisted cache format.
type DeviceDescriptor struct {
	Name    string `json:"name"`
	Address string `json:"device_id"`
}

// AUTH_METHOD_NONE is the only authentication method these devices use.
const AUTH_METHOD_NONE = "none"

// Fixed driver identity reported to hubs.
const (
	DRIVER_ID           = "8923777f-9761-4a9d-9747-479f8913f503"
	DRIVER_DISPLAY_NAME = "Eversolo DMP-A6"
	DRIVER_DESCRIPTION  = "PiControl Hub driver for controlling Eversolo DMP-A6 devices"
)

// DriverDescriptor is the fixed identity this driver reports to the hub.
type DriverDescriptor struct {
	Id                   string
	DisplayName          string
	Description          string
	AuthenticationMethod string
	RequiresPairing      bool
	Version              string
}
