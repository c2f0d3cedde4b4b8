package domain

import "errors"

var (
	// ErrCommandNotFound reports a command id outside the catalog.
	ErrCommandNotFound = errors.New("command not found")

	// ErrDeviceNotFound reports a device id unknown to both the live
	// snapshot and the cache.
	ErrDeviceNotFound = errors.New("device not found")
)
