package equalizer

import "errors"

// Domain errors for the equalizer package.
var (
	// ErrPresetNotFound is returned when a preset name is not in the built-in table.
	ErrPresetNotFound = errors.New("equalizer: preset not found")

	// ErrBandIndexOutOfRange is returned when a band index is outside [0, BandCount).
	ErrBandIndexOutOfRange = errors.New("equalizer: band index out of range")
)
