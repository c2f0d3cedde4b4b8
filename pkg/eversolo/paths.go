package eversolo

import (
	"fmt"
	"net/url"
)

// Control paths of the DMP-A6 HTTP API. All of them answer a JSON body with
// an embedded numeric status.
const (
	PathPlayOrPause     = "/ZidooMusicControl/v2/playOrPause"
	PathPlayNext        = "/ZidooMusicControl/v2/playNext"
	PathPlayPrevious    = "/ZidooMusicControl/v2/playLast"
	PathToggleVUDisplay = "/ZidooMusicControl/v2/changVUDisplay"
	PathToggleScreen    = "/ZidooMusicControl/v2/setPowerOption?tag=screen"
	PathPowerOff        = "/ZidooMusicControl/v2/setPowerOption?tag=poweroff"
)

// Remote keys accepted by the sendkey endpoint.
const (
	KeyVolumeUp   = "Key.VolumeUp"
	KeyVolumeDown = "Key.VolumeDown"
)

// Input source tags of the setInputList endpoint.
const (
	InputInternalPlayer = "XMOS"
	InputBluetooth      = "BT"
	InputUSB            = "USB"
	InputOptical        = "SPDIF"
	InputCoax           = "RCA"
)

// Output target tags of the setOutInputList endpoint.
const (
	OutputBalancedXLR = "XLR"
	OutputAnalogRCA   = "RCA"
	OutputXLRRCA      = "XLRRCA"
	OutputHDMI        = "HDMI"
	OutputSPDIF       = "SPDIF"
	OutputUSBDAC      = "USB"
)

func PathConnect(clientName string, clientUUID string) string {
	return fmt.Sprintf("/ZidooControlCenter/connect?name=%s&uuid=%s&tag=0&type=1",
		url.QueryEscape(clientName), url.QueryEscape(clientUUID))
}

func PathSendKey(key string) string {
	return fmt.Sprintf("/ZidooControlCenter/RemoteControl/sendkey?key=%s", key)
}

func PathSetInput(tag string) string {
	return fmt.Sprintf("/ZidooMusicControl/v2/setInputList?tag=%s&index=4", tag)
}

func PathSetOutput(tag string) string {
	return fmt.Sprintf("/ZidooMusicControl/v2/setOutInputList?tag=%s&index=0", tag)
}
