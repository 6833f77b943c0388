package whisper

import (
	"errors"
	"fmt"
)

// ErrEmptyResult means the engine ran cleanly but neither the output
// artifact nor the stdout fallback produced any text.
var ErrEmptyResult = errors.New("transcription produced no text")

// MissingBinaryError is returned before any subprocess is spawned when the
// engine executable cannot be located.
type MissingBinaryError struct {
	Path string
}

func (e *MissingBinaryError) Error() string {
	return fmt.Sprintf("whisper binary not found at %s", e.Path)
}

// MissingModelError is returned before any subprocess is spawned when the
// model file does not exist.
type MissingModelError struct {
	Path string
}

func (e *MissingModelError) Error() string {
	return fmt.Sprintf("model file not found at %s", e.Path)
}

// ProcessError wraps a non-zero engine exit. Output carries the combined
// stdout/stderr for logging; it is not meant for direct display.
type ProcessError struct {
	Err    error
	Output string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("whisper process failed: %v", e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
