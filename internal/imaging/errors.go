package imaging

import (
	"errors"
	"fmt"
)

// ErrEmptySample is returned when no pixel on the sampling grid matched the
// sampling criteria (zero-size image, or every sampled pixel was filtered out
// by the alpha threshold).
var ErrEmptySample = errors.New("no pixels matched the sampling criteria")

// ErrInvalidStride is returned when a sampling stride is smaller than 1.
var ErrInvalidStride = errors.New("sampling stride must be at least 1")

// ErrInvalidRegion is returned when a region is inverted or outside the image.
var ErrInvalidRegion = errors.New("invalid region")

// DecodeError reports an image that could not be opened or decoded.
//
// Decoding is deterministic, so callers should report the failure and move
// on rather than retry.
type DecodeError struct {
	Path string // File path, or a caller-supplied name for in-memory sources
	Err  error  // Underlying I/O or format error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
