package daemon

import "errors"

// ErrConfigNil is returned when no configuration is given.
var ErrConfigNil = errors.New("config is nil")
