// Package device resolves which input device and channel a capture session
// records from.
package device

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Info describes an input device.
type Info struct {
	UID               string
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
}

// Host is the seam over the audio backend's device enumeration, so selection
// logic is testable without hardware.
type Host interface {
	InputDevices() ([]Info, error)
	DefaultInput() (Info, error)
}

// Resolve picks the capture device. An explicitly requested UID wins when
// resolvable. Otherwise the system default is used, unless it exposes more
// than 2 input channels — multi-channel defaults are usually external audio
// interfaces, not dictation mics — in which case a built-in microphone is
// preferred when one exists.
func Resolve(h Host, preferredUID string, log *zap.SugaredLogger) (Info, error) {
	if preferredUID != "" {
		devs, err := h.InputDevices()
		if err != nil {
			return Info{}, fmt.Errorf("enumerate input devices: %w", err)
		}
		for _, d := range devs {
			if d.UID == preferredUID {
				return d, nil
			}
		}
		log.Warnw("preferred input device not found, falling back to default", "uid", preferredUID)
	}

	def, err := h.DefaultInput()
	if err != nil {
		return Info{}, fmt.Errorf("resolve default input device: %w", err)
	}
	if def.MaxInputChannels <= 2 {
		return def, nil
	}

	devs, err := h.InputDevices()
	if err != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 && isBuiltIn(d.Name) {
			log.Infow("default input is multi-channel, preferring built-in mic",
				"default", def.Name, "chosen", d.Name)
			return d, nil
		}
	}
	return def, nil
}

func isBuiltIn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "built-in") ||
		strings.Contains(n, "internal") ||
		strings.Contains(n, "macbook")
}

// PortAudioHost enumerates devices through PortAudio. PortAudio has no
// stable device UID, so the device name stands in for one.
type PortAudioHost struct{}

func (PortAudioHost) InputDevices() ([]Info, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, d := range devs {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, Info{
			UID:               d.Name,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}

func (PortAudioHost) DefaultInput() (Info, error) {
	d, err := portaudio.DefaultInputDevice()
	if err != nil {
		return Info{}, err
	}
	return Info{
		UID:               d.Name,
		Name:              d.Name,
		MaxInputChannels:  d.MaxInputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
	}, nil
}
