package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalidWidget is returned when a session is started on a widget that
	// failed to bind its value.
	ErrInvalidWidget = errors.New("tui: invalid message widget")
)
