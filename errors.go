package apm

import "errors"

// ErrInvalidFrameSize is returned when a caller passes a per-channel slice
// whose length does not equal StreamConfig.FramesPer10ms().
var ErrInvalidFrameSize = errors.New("apm: invalid frame size")

// ErrMismatchedChannels is returned when the number of per-channel slices
// passed to ProcessRender/ProcessCapture does not equal the stream config's
// channel count.
var ErrMismatchedChannels = errors.New("apm: mismatched channel count")
