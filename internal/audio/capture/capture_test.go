package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/device"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/logging"
)

type fakeHost struct {
	devs []device.Info
}

func (h fakeHost) InputDevices() ([]device.Info, error) { return h.devs, nil }
func (h fakeHost) DefaultInput() (device.Info, error)   { return h.devs[0], nil }

// fakeStream hands out a fixed chunk per Read with a small delay so the
// record loop makes progress without spinning.
type fakeStream struct {
	chunk []int16

	mu      sync.Mutex
	started bool
	stopped bool
	closed  bool
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *fakeStream) Read() ([]int16, error) {
	time.Sleep(time.Millisecond)
	out := make([]int16, len(s.chunk))
	copy(out, s.chunk)
	return out, nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeOpener struct {
	stream    *fakeStream
	failRates map[float64]error

	mu    sync.Mutex
	opens []float64
}

func (o *fakeOpener) Open(dev device.Info, channels int, rate float64, frames int) (Stream, error) {
	o.mu.Lock()
	o.opens = append(o.opens, rate)
	o.mu.Unlock()
	if err, ok := o.failRates[rate]; ok {
		return nil, err
	}
	return o.stream, nil
}

func (o *fakeOpener) openedRates() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]float64, len(o.opens))
	copy(out, o.opens)
	return out
}

func newTestRecorder(t *testing.T, opener Opener) *Recorder {
	t.Helper()
	host := fakeHost{devs: []device.Info{{UID: "mic", Name: "mic", MaxInputChannels: 2, DefaultSampleRate: 44100}}}
	return New(host, opener, t.TempDir(), "", 0, logging.Nop())
}

func TestStartWhileRecordingIsNoop(t *testing.T) {
	opener := &fakeOpener{stream: &fakeStream{chunk: []int16{100, 5, 100, 5}}}
	rec := newTestRecorder(t, opener)

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := len(opener.openedRates()); got != 1 {
		t.Fatalf("expected 1 open, got %d", got)
	}
	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStopWhileIdle(t *testing.T) {
	rec := newTestRecorder(t, &fakeOpener{stream: &fakeStream{chunk: []int16{0, 0}}})
	if _, err := rec.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestSampleRateFallback(t *testing.T) {
	opener := &fakeOpener{
		stream:    &fakeStream{chunk: []int16{50, 0, 50, 0}},
		failRates: map[float64]error{PrimaryRate: errors.New("rate unsupported")},
	}
	rec := newTestRecorder(t, opener)

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.SampleRate != FallbackRate {
		t.Fatalf("sample rate = %d, want %d", res.SampleRate, FallbackRate)
	}
	rates := opener.openedRates()
	if len(rates) != 2 || rates[0] != PrimaryRate || rates[1] != FallbackRate {
		t.Fatalf("open attempts = %v", rates)
	}
}

func TestBothRatesFail(t *testing.T) {
	opener := &fakeOpener{
		stream: &fakeStream{},
		failRates: map[float64]error{
			PrimaryRate:  errors.New("no 44100"),
			FallbackRate: errors.New("no 48000"),
		},
	}
	rec := newTestRecorder(t, opener)

	err := rec.Start(context.Background())
	var oe *OpenError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OpenError, got %v", err)
	}
	if oe.PrimaryRate != PrimaryRate || oe.FallbackRate != FallbackRate {
		t.Fatalf("unexpected rates in error: %+v", oe)
	}
	if rec.Recording() {
		t.Fatal("recorder should be idle after failed Start")
	}
}

func TestProducesDecodableMonoWav(t *testing.T) {
	// Stereo chunk with channel 0 clearly louder; auto-pick should keep it.
	opener := &fakeOpener{stream: &fakeStream{chunk: []int16{1000, 3, 1200, 4, 900, 2, 1100, 3}}}
	rec := newTestRecorder(t, opener)

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	res, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.Frames == 0 {
		t.Fatal("expected some frames written")
	}
	if base := filepath.Base(res.Path); !strings.HasPrefix(base, "RecordTemp_") {
		t.Fatalf("unexpected temp name %q", base)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.NumChans != 1 {
		t.Fatalf("channels = %d, want 1", dec.NumChans)
	}
	if int(dec.SampleRate) != res.SampleRate {
		t.Fatalf("sample rate = %d, want %d", dec.SampleRate, res.SampleRate)
	}
	if len(buf.Data) != res.Frames {
		t.Fatalf("decoded %d samples, result says %d", len(buf.Data), res.Frames)
	}
	for i, v := range buf.Data {
		if v < 500 {
			t.Fatalf("sample %d = %d, quiet channel leaked through", i, v)
		}
	}
}

func TestCancelRemovesFile(t *testing.T) {
	stream := &fakeStream{chunk: []int16{10, 10}}
	rec := newTestRecorder(t, &fakeOpener{stream: stream})

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.mu.Lock()
	path := rec.path
	rec.mu.Unlock()

	if err := rec.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file still present: %v", err)
	}
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if !stream.stopped || !stream.closed {
		t.Fatal("stream not torn down on cancel")
	}
}
