package audio

import (
	"errors"
	"time"
)

// ErrMalformedBuffer is returned when a buffer has no channels, empty
// channel data, or channels of unequal length.
var ErrMalformedBuffer = errors.New("audio: malformed buffer")

// Buffer holds a fully decoded multi-channel clip.
//
// Data is laid out per channel; all channel slices must have the same
// length. Operations in this module never mutate a Buffer they did not
// create: transforms work on a [Buffer.Clone].
type Buffer struct {
	SampleRate float64
	Data       [][]float64
}

// Channels returns the number of channels.
func (b *Buffer) Channels() int {
	return len(b.Data)
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}

	return len(b.Data[0])
}

// Duration returns the clip duration derived from frame count and
// sample rate.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}

	seconds := float64(b.Frames()) / b.SampleRate

	return time.Duration(seconds * float64(time.Second))
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		SampleRate: b.SampleRate,
		Data:       make([][]float64, len(b.Data)),
	}

	for i, ch := range b.Data {
		out.Data[i] = make([]float64, len(ch))
		copy(out.Data[i], ch)
	}

	return out
}

// Validate checks that the buffer has at least one non-empty channel, a
// positive sample rate, and equal-length channel data.
func (b *Buffer) Validate() error {
	if b == nil || len(b.Data) == 0 || b.SampleRate <= 0 {
		return ErrMalformedBuffer
	}

	frames := len(b.Data[0])
	if frames == 0 {
		return ErrMalformedBuffer
	}

	for _, ch := range b.Data[1:] {
		if len(ch) != frames {
			return ErrMalformedBuffer
		}
	}

	return nil
}

// Mixdown returns a mono mixdown (mean across channels) of the buffer.
func (b *Buffer) Mixdown() []float64 {
	frames := b.Frames()
	if frames == 0 || len(b.Data) == 0 {
		return nil
	}

	out := make([]float64, frames)
	scale := 1.0 / float64(len(b.Data))

	for _, ch := range b.Data {
		for i, s := range ch {
			out[i] += s * scale
		}
	}

	return out
}
