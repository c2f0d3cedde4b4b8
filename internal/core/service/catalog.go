package service

import (
	"context"
	"fmt"

	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"
)

// InfraredCodePower is the key name emitted for the power toggle when an
// infrared transport is configured.
const InfraredCodePower = "KEY_POWER"

// BuildCatalog returns the full remote command table in presentation order.
// The table is fixed: ids, titles and actions never depend on runtime state.
func BuildCatalog() []domain.CommandSpec {
	return []domain.CommandSpec{
		{
			Id:    domain.COMMAND_ID_TOGGLE_POWER,
			Title: "On/Off",
			Icon:  "toggle-power",
			Action: domain.InfraredAction{
				Code:         InfraredCodePower,
				FallbackPath: eversolo.PathPowerOff,
			},
		},
		{
			Id:     domain.COMMAND_ID_TOGGLE_DISPLAY,
			Title:  "Display on/off",
			Icon:   "toggle-display",
			Action: domain.HTTPAction{Path: eversolo.PathToggleScreen},
		},
		{
			Id:     domain.COMMAND_ID_TOGGLE_VU,
			Title:  "Change VU",
			Icon:   "toggle-vu",
			Action: domain.HTTPAction{Path: eversolo.PathToggleVUDisplay},
		},
		{
			Id:     domain.COMMAND_ID_VOLUME_UP,
			Title:  "Volume +",
			Icon:   "volume-up",
			Action: domain.HTTPAction{Path: eversolo.PathSendKey(eversolo.KeyVolumeUp)},
		},
		{
			Id:     domain.COMMAND_ID_VOLUME_DOWN,
			Title:  "Volume -",
			Icon:   "volume-down",
			Action: domain.HTTPAction{Path: eversolo.PathSendKey(eversolo.KeyVolumeDown)},
		},
		{
			Id:     domain.COMMAND_ID_PLAY_PAUSE,
			Title:  "Play/Pause",
			Icon:   "play-pause",
			Action: domain.HTTPAction{Path: eversolo.PathPlayOrPause},
		},
		{
			Id:     domain.COMMAND_ID_PLAY_NEXT,
			Title:  "Next Track",
			Icon:   "play-next",
			Action: domain.HTTPAction{Path: eversolo.PathPlayNext},
		},
		{
			Id:     domain.COMMAND_ID_PLAY_PREVIOUS,
			Title:  "Previous Track",
			Icon:   "play-previous",
			Action: domain.HTTPAction{Path: eversolo.PathPlayPrevious},
		},
		{
			Id:     domain.COMMAND_ID_INPUT_INTERNAL_PLAYER,
			Title:  "Input: Internal Player",
			Icon:   "in-internal-player",
			Action: domain.HTTPAction{Path: eversolo.PathSetInput(eversolo.InputInternalPlayer)},
		},
		{
			Id:     domain.COMMAND_ID_INPUT_BLUETOOTH,
			Title:  "Input: Bluetooth",
			Icon:   "in-bluetooth",
			Action: domain.HTTPAction{Path: eversolo.PathSetInput(eversolo.InputBluetooth)},
		},
		{
			Id:     domain.COMMAND_ID_INPUT_USB,
			Title:  "Input: USB",
			Icon:   "in-usb",
			Action: domain.HTTPAction{Path: eversolo.PathSetInput(eversolo.InputUSB)},
		},
		{
			Id:     domain.COMMAND_ID_INPUT_OPTICAL,
			Title:  "Input: Optical",
			Icon:   "in-optical",
			Action: domain.HTTPAction{Path: eversolo.PathSetInput(eversolo.InputOptical)},
		},
		{
			Id:     domain.COMMAND_ID_INPUT_COAX,
			Title:  "Input: Coax",
			Icon:   "in-coax",
			Action: domain.HTTPAction{Path: eversolo.PathSetInput(eversolo.InputCoax)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_BALANCED_XLR,
			Title:  "Output: Balanced XLR",
			Icon:   "out-balxlr",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputBalancedXLR)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_ANALOG_RCA,
			Title:  "Output: Analog RCA",
			Icon:   "out-analog-rca",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputAnalogRCA)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_XLR_RCA,
			Title:  "Output: XLR/RCA",
			Icon:   "out-xlr-rca",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputXLRRCA)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_HDMI,
			Title:  "Output: HDMI",
			Icon:   "out-hdmi",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputHDMI)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_SPDIF,
			Title:  "Output: SPDIF",
			Icon:   "out-spdif",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputSPDIF)},
		},
		{
			Id:     domain.COMMAND_ID_OUTPUT_USB_DAC,
			Title:  "Output: USB DAC",
			Icon:   "out-usb-dac",
			Action: domain.HTTPAction{Path: eversolo.PathSetOutput(eversolo.OutputUSBDAC)},
		},
	}
}

// LookupCommand finds a command by id in catalog order.
func LookupCommand(catalog []domain.CommandSpec, id domain.CommandID) (domain.CommandSpec, error) {
	for _, spec := range catalog {
		if spec.Id == id {
			return spec, nil
		}
	}
	return domain.CommandSpec{}, fmt.Errorf("%w: %d", domain.ErrCommandNotFound, id)
}

// ExecuteAction runs one command action against a device. Failures surface
// to the caller.
func ExecuteAction(ctx context.Context, client eversolo.ControlClient, infrared port.InfraredSender,
	spec domain.CommandSpec) error {
	switch action := spec.Action.(type) {
	case domain.HTTPAction:
		return client.Exec(ctx, action.Path)
	case domain.InfraredAction:
		if infrared != nil {
			return infrared.Send(ctx, action.Code)
		}
		return client.Exec(ctx, action.FallbackPath)
	default:
		return fmt.Errorf("command %d has no executable action", spec.Id)
	}
}

// Layout returns the remote grid, row by row from the top.
func Layout() domain.RemoteLayout {
	return domain.RemoteLayout{
		{domain.COMMAND_ID_TOGGLE_POWER, domain.COMMAND_ID_TOGGLE_DISPLAY, domain.COMMAND_ID_TOGGLE_VU},
		{domain.COMMAND_ID_VOLUME_DOWN, domain.LAYOUT_EMPTY, domain.COMMAND_ID_VOLUME_UP},
		{domain.COMMAND_ID_PLAY_PREVIOUS, domain.COMMAND_ID_PLAY_PAUSE, domain.COMMAND_ID_PLAY_NEXT},
		{domain.LAYOUT_EMPTY, domain.LAYOUT_EMPTY, domain.LAYOUT_EMPTY},
		{domain.COMMAND_ID_INPUT_INTERNAL_PLAYER, domain.COMMAND_ID_INPUT_BLUETOOTH, domain.COMMAND_ID_INPUT_USB},
		{domain.COMMAND_ID_INPUT_OPTICAL, domain.LAYOUT_EMPTY, domain.COMMAND_ID_INPUT_COAX},
		{domain.LAYOUT_EMPTY, domain.LAYOUT_EMPTY, domain.LAYOUT_EMPTY},
		{domain.COMMAND_ID_OUTPUT_BALANCED_XLR, domain.COMMAND_ID_OUTPUT_ANALOG_RCA, domain.COMMAND_ID_OUTPUT_XLR_RCA},
		{domain.COMMAND_ID_OUTPUT_HDMI, domain.COMMAND_ID_OUTPUT_SPDIF, domain.COMMAND_ID_OUTPUT_USB_DAC},
	}
}

// LayoutSize returns the width and height of the remote grid.
func LayoutSize() (int, int) {
	return 3, 9
}
