package app

import (
	"errors"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/asr"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/capture"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/wavconv"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/permission"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/whisper"
)

// statusForError maps each error kind to the short message shown to the
// user. Raw diagnostic detail is logged, never displayed.
func statusForError(err error) string {
	var (
		missingBin   *whisper.MissingBinaryError
		missingModel *whisper.MissingModelError
		procErr      *whisper.ProcessError
		openErr      *capture.OpenError
		retryErr     *asr.RetryExhaustedError
		deniedErr    *permission.DeniedError
	)
	switch {
	case errors.As(err, &missingBin):
		return "Whisper binary not found"
	case errors.As(err, &missingModel):
		return "Model file not found"
	case errors.As(err, &procErr):
		return "Transcription failed"
	case errors.Is(err, whisper.ErrEmptyResult), errors.Is(err, wavconv.ErrEmptyResult):
		return "No speech detected"
	case errors.As(err, &openErr):
		return "Could not open audio device"
	case errors.Is(err, capture.ErrNotRecording):
		return "Not recording"
	case errors.Is(err, capture.ErrMissingDestination):
		return "Recording file missing"
	case errors.As(err, &retryErr):
		return "Upload failed"
	case errors.As(err, &deniedErr):
		return "Permission denied: " + deniedErr.Kind.String()
	default:
		return "Unexpected error"
	}
}
