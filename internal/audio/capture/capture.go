// Package capture records microphone audio into a temporary mono WAV file.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/device"
)

const (
	// PrimaryRate is tried first; FallbackRate once after a failure.
	PrimaryRate  = 44100
	FallbackRate = 48000

	framesPerBuffer = 1024
)

// Stream is one open capture stream delivering interleaved int16 frames.
type Stream interface {
	Start() error
	// Read blocks for the next interleaved buffer.
	Read() ([]int16, error)
	Stop() error
	Close() error
}

// Opener is the seam over the audio backend's stream creation.
type Opener interface {
	Open(dev device.Info, channels int, sampleRate float64, frames int) (Stream, error)
}

// Result describes a finished recording.
type Result struct {
	Path       string
	SampleRate int
	Frames     int
	Duration   time.Duration
}

type sessionResult struct {
	frames int
	err    error
}

// Recorder owns at most one capture session at a time. The session's
// destination file belongs exclusively to the recorder until Stop returns.
type Recorder struct {
	host    device.Host
	opener  Opener
	tempDir string
	log     *zap.SugaredLogger

	preferredUID     string
	preferredChannel int

	mu         sync.Mutex
	recording  bool
	path       string
	sampleRate int
	stopCancel context.CancelFunc
	done       chan sessionResult
}

// New creates a recorder. preferredChannel is 1-based, 0 = auto.
func New(host device.Host, opener Opener, tempDir, preferredUID string, preferredChannel int, log *zap.SugaredLogger) *Recorder {
	return &Recorder{
		host:             host,
		opener:           opener,
		tempDir:          tempDir,
		preferredUID:     preferredUID,
		preferredChannel: preferredChannel,
		log:              log,
	}
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens the device and begins streaming to a fresh temp file. Starting
// while already recording is a no-op, not an error. Device open is attempted
// at the primary sample rate with one retry at the fallback rate.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	dev, err := device.Resolve(r.host, r.preferredUID, r.log)
	if err != nil {
		return err
	}
	channels := dev.MaxInputChannels
	if channels < 1 {
		channels = 1
	}

	rate := float64(PrimaryRate)
	stream, primaryErr := r.opener.Open(dev, channels, rate, framesPerBuffer)
	if primaryErr != nil {
		r.log.Warnw("capture open failed at primary rate, retrying",
			"device", dev.Name, "rate", PrimaryRate, "error", primaryErr)
		rate = float64(FallbackRate)
		var fallbackErr error
		stream, fallbackErr = r.opener.Open(dev, channels, rate, framesPerBuffer)
		if fallbackErr != nil {
			return &OpenError{
				Device:       dev.Name,
				PrimaryRate:  PrimaryRate,
				PrimaryErr:   primaryErr,
				FallbackRate: FallbackRate,
				FallbackErr:  fallbackErr,
			}
		}
	}

	path := r.tempWavPath()
	file, err := os.Create(path)
	if err != nil {
		_ = stream.Close()
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := stream.Start(); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		_ = stream.Close()
		return fmt.Errorf("start stream: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan sessionResult, 1)

	r.mu.Lock()
	r.recording = true
	r.path = path
	r.sampleRate = int(rate)
	r.stopCancel = cancel
	r.done = done
	r.mu.Unlock()

	r.log.Debugw("recording started", "path", path, "rate", int(rate), "channels", channels)
	go r.recordLoop(loopCtx, stream, file, channels, int(rate), done)
	return nil
}

// Stop tears the session down and returns the finished file. No partially
// flushed writes are observable after Stop returns. Calling Stop while idle
// is an error of its own kind.
func (r *Recorder) Stop() (Result, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	cancel := r.stopCancel
	done := r.done
	path := r.path
	rate := r.sampleRate
	r.mu.Unlock()

	cancel()
	res := <-done

	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()

	if res.err != nil {
		return Result{}, res.err
	}

	if _, err := os.Stat(path); err != nil {
		return Result{}, ErrMissingDestination
	}

	dur, err := derivedDuration(path)
	if err != nil {
		return Result{}, fmt.Errorf("reopen %s: %w", path, err)
	}
	r.log.Debugw("recording stopped", "path", path, "frames", res.frames, "duration", dur)
	return Result{Path: path, SampleRate: rate, Frames: res.frames, Duration: dur}, nil
}

// Cancel discards the active session and removes its temp file.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	cancel := r.stopCancel
	done := r.done
	path := r.path
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()

	_ = os.Remove(path)
	r.log.Debugw("recording canceled", "path", path)
	return nil
}

func (r *Recorder) recordLoop(ctx context.Context, stream Stream, file *os.File, channels, rate int, done chan<- sessionResult) {
	enc := wav.NewEncoder(file, rate, 16, 1, 1)
	format := &audio.Format{NumChannels: 1, SampleRate: rate}
	picker := device.NewPicker(r.preferredChannel)
	frames := 0

	fail := func(err error) {
		_ = enc.Close()
		_ = file.Close()
		_ = stream.Stop()
		_ = stream.Close()
		done <- sessionResult{err: err}
	}

	for {
		select {
		case <-ctx.Done():
			_ = stream.Stop()
			_ = stream.Close()
			if err := enc.Close(); err != nil {
				_ = file.Close()
				done <- sessionResult{err: fmt.Errorf("finalize wav: %w", err)}
				return
			}
			if err := file.Close(); err != nil {
				done <- sessionResult{err: fmt.Errorf("close wav: %w", err)}
				return
			}
			done <- sessionResult{frames: frames}
			return
		default:
		}

		chunk, err := stream.Read()
		if err != nil {
			r.log.Debugw("stream read error", "error", err)
			continue
		}
		ch := picker.Pick(chunk, channels)
		mono := device.ExtractChannel(chunk, channels, ch)

		data := make([]int, len(mono))
		for i, v := range mono {
			data[i] = int(v)
		}
		buf := &audio.IntBuffer{Format: format, Data: data, SourceBitDepth: 16}
		if err := enc.Write(buf); err != nil {
			fail(fmt.Errorf("wav write failed: %w", err))
			return
		}
		frames += len(mono)
	}
}

func derivedDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	return dec.Duration()
}

func (r *Recorder) tempWavPath() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	dir := r.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("RecordTemp_%s.wav", id))
}
