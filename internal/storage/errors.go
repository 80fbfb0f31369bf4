package storage

import "errors"

// ErrNotFound is returned when no archived case matches a lookup.
var ErrNotFound = errors.New("not found")
