package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/device"
)

// PortAudioOpener opens capture streams through the portaudio backend.
// Each Open initializes the library; Close on the stream terminates it.
type PortAudioOpener struct{}

func (PortAudioOpener) Open(dev device.Info, channels int, sampleRate float64, frames int) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	info, err := findInputDevice(dev.UID)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}
	if channels > info.MaxInputChannels {
		channels = info.MaxInputChannels
	}

	buf := make([]int16, frames*channels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: frames,
	}
	st, err := portaudio.OpenStream(params, buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream %q at %.0f Hz: %w", dev.Name, sampleRate, err)
	}
	return &paStream{stream: st, buf: buf}, nil
}

func findInputDevice(uid string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 && d.Name == uid {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", uid)
}

type paStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func (s *paStream) Start() error { return s.stream.Start() }

func (s *paStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		return nil, err
	}
	out := make([]int16, len(s.buf))
	copy(out, s.buf)
	return out, nil
}

func (s *paStream) Stop() error { return s.stream.Stop() }

func (s *paStream) Close() error {
	err := s.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
