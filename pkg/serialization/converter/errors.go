package converter

import "errors"

// ErrNoConversionPath is returned when no registered edge path connects the
// source representation to the target. It indicates a configuration gap, not
// a data error.
var ErrNoConversionPath = errors.New("no conversion path")
