package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a MAC does not exist in the registry.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a MAC that already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrStateNotFound is returned when a device has no state row.
	ErrStateNotFound = errors.New("device: state not found")

	// ErrInvalidAddress is returned when a hardware address is malformed.
	ErrInvalidAddress = errors.New("device: invalid address")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidSeason is returned when a season value is not recognised.
	ErrInvalidSeason = errors.New("device: invalid season")

	// ErrInvalidState is returned when state validation fails.
	ErrInvalidState = errors.New("device: invalid state")
)
