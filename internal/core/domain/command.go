package domain

// CommandID is the stable outward identifier of a remote command. Ids are
// part of the hub contract and must never be renumbered. The gap at 9 is
// intentional.
type CommandID int

const (
	COMMAND_ID_TOGGLE_POWER          CommandID = 1
	COMMAND_ID_TOGGLE_DISPLAY        CommandID = 2
	COMMAND_ID_TOGGLE_VU             CommandID = 3
	COMMAND_ID_VOLUME_UP             CommandID = 4
	COMMAND_ID_VOLUME_DOWN           CommandID = 5
	COMMAND_ID_PLAY_PAUSE            CommandID = 6
	COMMAND_ID_PLAY_NEXT             CommandID = 7
	COMMAND_ID_PLAY_PREVIOUS         CommandID = 8
	COMMAND_ID_INPUT_INTERNAL_PLAYER CommandID = 10
	COMMAND_ID_INPUT_BLUETOOTH       CommandID = 11
	COMMAND_ID_INPUT_USB             CommandID = 12
	COMMAND_ID_INPUT_OPTICAL         CommandID = 13
	COMMAND_ID_INPUT_COAX            CommandID = 14
	COMMAND_ID_OUTPUT_BALANCED_XLR   CommandID = 15
	COMMAND_ID_OUTPUT_ANALOG_RCA     CommandID = 16
	COMMAND_ID_OUTPUT_XLR_RCA        CommandID = 17
	COMMAND_ID_OUTPUT_HDMI           CommandID = 18
	COMMAND_ID_OUTPUT_SPDIF          CommandID = 19
	COMMAND_ID_OUTPUT_USB_DAC        CommandID = 20
)

// LAYOUT_EMPTY marks an unassigned cell in a RemoteLayout.
const LAYOUT_EMPTY CommandID = -1

// Action is the effect of executing a command. Exactly one variant applies
// per command; execution dispatches on the concrete type.
type Action interface {
	isAction()
}

// HTTPAction performs a GET of Path against the device control API.
type HTTPAction struct {
	Path string
}

// InfraredAction emits Code through the infrared transport, falling back to
// FallbackPath over HTTP when no transport is configured.
type InfraredAction struct {
	Code         string
	FallbackPath string
}

func (HTTPAction) isAction()     {}
func (InfraredAction) isAction() {}

// CommandSpec describes one remote command. Title and Icon are presentation
// hints for the hub; only Id is contractual.
type CommandSpec struct {
	Id     CommandID
	Title  string
	Icon   string
	Action Action
}

// RemoteLayout is a fixed-size grid of command ids, row by row from the top
// of the remote. Cells hold LAYOUT_EMPTY where no command is assigned.
type RemoteLayout [][]CommandID
