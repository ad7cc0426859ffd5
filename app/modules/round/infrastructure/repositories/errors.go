package rounddb

import "errors"

// ErrNotFound is returned when the requested round does not exist.
var ErrNotFound = errors.New("round not found")
