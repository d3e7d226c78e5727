package device

import "errors"

// Registry and validation errors. Validation errors carry detail through
// wrapping; match them with errors.Is.
var (
	ErrDeviceNotFound = errors.New("device: not found")
	ErrDeviceExists   = errors.New("device: already exists")

	ErrInvalidDevice     = errors.New("device: invalid")
	ErrInvalidDeviceType = errors.New("device: invalid type")
	ErrInvalidName       = errors.New("device: invalid name")
	ErrInvalidBattery    = errors.New("device: battery level outside 0-100")

	// ErrMultipleConnected rejects a catalog with more than one connected device.
	ErrMultipleConnected = errors.New("device: more than one device connected")
)
