package envelope

import "errors"

// ErrInvalidFormat reports bytes that are not single-object encoded: too
// short, or not starting with the magic marker.
var ErrInvalidFormat = errors.New("invalid single-object encoding")
