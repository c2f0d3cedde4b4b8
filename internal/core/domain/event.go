package domain

import "fmt"

// DeviceEvent is published on the actor system event stream whenever the
// discovery listener changes what it knows about a device.
type DeviceEvent interface {
	DeviceEvent() string
	Device() DeviceDescriptor
}

type DeviceEventMixIn struct {
	Descriptor DeviceDescriptor
}

func (e DeviceEventMixIn) DeviceEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e DeviceEventMixIn) Device() DeviceDescriptor {
	return e.Descriptor
}

// DeviceDiscoveredEvent fires once per confirmed service instance.
type DeviceDiscoveredEvent struct {
	DeviceEventMixIn
	Instance string
}
