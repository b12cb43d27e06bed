// Package audio decodes samples, mixes playback voices against an audio
// clock and summarises buffers into waveform envelopes.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned when bytes do not hold a PCM WAV file
var ErrNotWAV = errors.New("audio: not a PCM wav file")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Buffer is decoded PCM, one []float32 per channel in [-1, 1].
// A Buffer is never modified after it is created.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer wraps channel data. The caller must not modify the slices afterwards.
func NewBuffer(sampleRate int, channels ...[]float32) *Buffer {
	return &Buffer{sampleRate: sampleRate, channels: channels}
}

func (b *Buffer) SampleRate() int { return b.sampleRate }

func (b *Buffer) NumChannels() int { return len(b.channels) }

// Frames is the length in samples per channel
func (b *Buffer) Frames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of channel i, or nil if out of range
func (b *Buffer) Channel(i int) []float32 {
	if i < 0 || i >= len(b.channels) {
		return nil
	}
	return b.channels[i]
}

func (b *Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.sampleRate) * float64(time.Second))
}

// Envelope summarises the first channel into width min/max pairs
func (b *Buffer) Envelope(width int) []Peak {
	return Envelope(b.Channel(0), width)
}

// Decode reads a WAV file held in memory
func Decode(data []byte) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, ErrNotWAV
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: format tag %d", ErrNotWAV, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrNotWAV)
	}

	numChans := pcm.Format.NumChannels
	depth := pcm.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrNotWAV, depth)
	}

	frames := len(pcm.Data) / numChans
	channels := make([][]float32, numChans)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}

	scale := float32(int64(1) << (depth - 1))
	for i := 0; i < frames; i++ {
		for c := 0; c < numChans; c++ {
			v := pcm.Data[i*numChans+c]
			if depth == 8 {
				// 8-bit wav is unsigned
				v -= 128
			}
			channels[c][i] = float32(v) / scale
		}
	}

	return &Buffer{sampleRate: pcm.Format.SampleRate, channels: channels}, nil
}
