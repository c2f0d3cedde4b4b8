package mqtt

import (
	"encoding/json"

	"github.com/picontrol/eversolo2hub/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

// DeviceAnnouncement is the retained per-device config message published
// when discovery confirms a device.
type DeviceAnnouncement struct {
	Name     string `json:"name"`
	DeviceId string `json:"device_id"`
	Driver   string `json:"driver"`
	Version  string `json:"version"`
}

// CommandResult reports the outcome of one execute request received over
// the broker.
type CommandResult struct {
	Command int    `json:"command"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func DeviceAnnouncementPayload(device domain.DeviceDescriptor) (string, error) {
	payload, err := json.Marshal(DeviceAnnouncement{
		Name:     device.Name,
		DeviceId: device.Address,
		Driver:   domain.DRIVER_DISPLAY_NAME,
		Version:  versioninfo.Short(),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func CommandResultPayload(command domain.CommandID, execErr error) (string, error) {
	result := CommandResult{
		Command: int(command),
		Success: execErr == nil,
	}
	if execErr != nil {
		result.Error = execErr.Error()
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
