package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or declined to
	// send the form.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoChoice is returned when a select prompt yields no known option.
	ErrNoChoice = errors.New("tui: no option selected")
)
