package control

import "errors"

// ErrMissingInput is returned when a strategy is invoked with too few
// arguments.
var ErrMissingInput = errors.New("control: missing required argument")

// ErrUnknownCommand is returned when a request's command name is not in
// the strategy table.
var ErrUnknownCommand = errors.New("control: unknown command")
