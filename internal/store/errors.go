package store

import "errors"

// ErrNotFound is returned when a record is not in the index.
var ErrNotFound = errors.New("not found")
