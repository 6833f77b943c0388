package capture

import (
	"errors"
	"fmt"
)

// ErrNotRecording is returned by Stop and Cancel when no session is active.
var ErrNotRecording = errors.New("capture: not recording")

// ErrMissingDestination means the session's destination file vanished before
// Stop could finalize it. This is an invariant violation — a bug signal, not
// a user-facing condition.
var ErrMissingDestination = errors.New("capture: destination file missing after stop")

// OpenError reports that the device could not be opened at the primary rate
// nor at the fallback rate.
type OpenError struct {
	Device      string
	PrimaryRate float64
	PrimaryErr  error
	FallbackRate float64
	FallbackErr  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("capture: open %s failed at %.0f Hz (%v) and %.0f Hz (%v)",
		e.Device, e.PrimaryRate, e.PrimaryErr, e.FallbackRate, e.FallbackErr)
}
