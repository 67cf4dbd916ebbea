package events

import "errors"

// ErrNoHandlers is returned when an event is emitted before any handler is
// registered.
var ErrNoHandlers = errors.New("no event handlers registered")
