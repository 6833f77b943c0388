// Package wavconv converts recorded audio into the 16 kHz mono PCM
// container the transcription engine expects.
package wavconv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/device"
)

const (
	// TargetRate is the sample rate the engine wants its input at.
	TargetRate = 16000
	targetBits = 16
)

// ErrEmptyResult is returned when conversion yields zero output frames.
var ErrEmptyResult = errors.New("conversion produced no audio frames")

// ConvertTo16kMonoPCM reads a finished WAV file, reduces it to one channel,
// resamples to 16 kHz signed 16-bit and writes the result next to the input
// with a "_16k" suffix. Dictation takes are short, so the whole input is
// held in memory for the conversion.
func ConvertTo16kMonoPCM(inputPath string) (string, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", inputPath, err)
	}
	channels := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if channels < 1 || srcRate < 1 {
		return "", fmt.Errorf("decode %s: bad format %d ch / %d Hz", inputPath, channels, srcRate)
	}

	mono := monoSamples(buf.Data, channels)
	out := Resample(mono, srcRate, TargetRate)
	if len(out) == 0 {
		return "", ErrEmptyResult
	}

	outPath := derivedPath(inputPath)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := WritePCM16Mono(f, out, TargetRate); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", outPath, err)
	}
	return outPath, nil
}

// monoSamples reduces interleaved frames to the loudest channel. A mono
// input passes through untouched.
func monoSamples(data []int, channels int) []int16 {
	src := make([]int16, len(data))
	for i, v := range data {
		src[i] = int16(v)
	}
	if channels == 1 {
		return src
	}
	ch := device.PeakChannel(src, channels)
	return device.ExtractChannel(src, channels, ch)
}

// Resample converts the whole buffer in one shot using linear
// interpolation between neighboring source samples.
func Resample(in []int16, srcRate, dstRate int) []int16 {
	if len(in) == 0 {
		return nil
	}
	if srcRate == dstRate {
		out := make([]int16, len(in))
		copy(out, in)
		return out
	}
	n := int(int64(len(in)) * int64(dstRate) / int64(srcRate))
	if n == 0 {
		return nil
	}
	out := make([]int16, n)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		a := float64(in[j])
		b := float64(in[j+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}

// WritePCM16Mono serializes samples as an uncompressed PCM WAV: the fixed
// 44-byte header followed by little-endian sample bytes. Downstream tooling
// parses this layout directly, so the header is written field by field
// rather than through an encoder that may emit extra chunks.
func WritePCM16Mono(w io.Writer, samples []int16, sampleRate int) error {
	const (
		numChannels = 1
		fmtChunkLen = 16
		pcmTag      = 1
	)
	dataLen := len(samples) * 2
	blockAlign := numChannels * targetBits / 8
	byteRate := sampleRate * blockAlign

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], fmtChunkLen)
	binary.LittleEndian.PutUint16(hdr[20:22], pcmTag)
	binary.LittleEndian.PutUint16(hdr[22:24], numChannels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], targetBits)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	body := make([]byte, dataLen)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(body[i*2:], uint16(s))
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

func derivedPath(inputPath string) string {
	const ext = ".wav"
	base := inputPath
	if len(base) >= len(ext) && base[len(base)-len(ext):] == ext {
		base = base[:len(base)-len(ext)]
	}
	return base + "_16k" + ext
}
