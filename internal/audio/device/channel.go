package device

// Picker chooses the capture channel for one session and memoizes the
// choice: once made it never changes mid-session, even if the signal moves.
type Picker struct {
	preferred int
	chosen    int
	done      bool
}

// NewPicker creates a picker. preferred is 1-based; 0 means auto-detect from
// the first buffer's per-channel peak amplitude.
func NewPicker(preferred int) *Picker {
	return &Picker{preferred: preferred}
}

// Pick returns the 0-based channel to keep for an interleaved frame buffer.
func (p *Picker) Pick(frame []int16, channels int) int {
	if p.done {
		return p.chosen
	}
	switch {
	case channels <= 1:
		p.chosen = 0
	case p.preferred > 0:
		c := p.preferred - 1
		if c >= channels {
			c = channels - 1
		}
		p.chosen = c
	default:
		p.chosen = PeakChannel(frame, channels)
	}
	p.done = true
	return p.chosen
}

// PeakChannel returns the channel with the highest peak absolute sample
// magnitude in an interleaved buffer.
func PeakChannel(frame []int16, channels int) int {
	if channels <= 1 {
		return 0
	}
	peaks := make([]int32, channels)
	for i, s := range frame {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		c := i % channels
		if v > peaks[c] {
			peaks[c] = v
		}
	}
	best := 0
	for c := 1; c < channels; c++ {
		if peaks[c] > peaks[best] {
			best = c
		}
	}
	return best
}

// ExtractChannel downmixes an interleaved buffer to the single channel ch.
func ExtractChannel(frame []int16, channels, ch int) []int16 {
	if channels <= 1 {
		out := make([]int16, len(frame))
		copy(out, frame)
		return out
	}
	n := len(frame) / channels
	out := make([]int16, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, frame[i*channels+ch])
	}
	return out
}
