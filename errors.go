package hyperloglog

import "github.com/pkg/errors"

// Error kinds reported by this package. Call sites wrap them with
// context; match with errors.Is.
var (
	// ErrInvalidPrecision is returned when a precision outside [0, 30]
	// is requested or found in serialized data.
	ErrInvalidPrecision = errors.New("precision must be in the range [0,30]")

	// ErrIncompatibleSketch is returned when sketches that differ in
	// register size, or in kind entirely, are merged.
	ErrIncompatibleSketch = errors.New("cannot merge incompatible sketches")

	// ErrIncompatibleSize is returned when register arrays of different
	// lengths are merged.
	ErrIncompatibleSize = errors.New("register arrays differ in size")

	// ErrMalformedInput is returned when serialized data does not match
	// the shape its header declares.
	ErrMalformedInput = errors.New("malformed sketch data")
)
