package control

import "errors"

// Domain errors for the control package.
var (
	// ErrUnsupported is returned when the device lacks the capability a setting needs.
	ErrUnsupported = errors.New("control: not supported by device")

	// ErrInvalidNoiseMode is returned for a noise mode name that is not recognised.
	ErrInvalidNoiseMode = errors.New("control: invalid noise mode")

	// ErrUnknownEnhancement is returned for an enhancement name that is not recognised.
	ErrUnknownEnhancement = errors.New("control: unknown enhancement")
)
