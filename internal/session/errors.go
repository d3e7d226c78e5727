package session

import "errors"

// Domain errors for the session package.
//
// Errors from the device, operation, equalizer and control packages are
// returned wrapped but unchanged in kind, so callers check them with
// errors.Is against those packages' sentinels.
var (
	// ErrNoActiveDevice is returned by commands that target the connected device when none is.
	ErrNoActiveDevice = errors.New("session: no active device")

	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("session: closed")
)
