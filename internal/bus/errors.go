package bus

import "errors"

// ErrUnknownCommand is returned for a command topic or action the router
// does not handle.
var ErrUnknownCommand = errors.New("bus: unknown command")
