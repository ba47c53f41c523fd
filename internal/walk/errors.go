package walk

import "errors"

// ErrInvalidArgument indicates a negative size, a non-positive dimension, or
// an unusable step source.
var ErrInvalidArgument = errors.New("walk: invalid argument")
