package main

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/voicecheck/audio"
)

// decodeWAV loads a WAV file into a planar float buffer. The returned
// bit depth is the source's, so an encode round trip preserves it.
func decodeWAV(path string) (*audio.Buffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	floats := pcm.AsFloat32Buffer()

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("%s reports no channels", path)
	}

	frames := len(floats.Data) / channels

	buf := &audio.Buffer{
		SampleRate: float64(decoder.SampleRate),
		Data:       make([][]float64, channels),
	}

	for ch := range buf.Data {
		buf.Data[ch] = make([]float64, frames)
	}

	// WAV frames are interleaved.
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = float64(floats.Data[i*channels+ch])
		}
	}

	if err := buf.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	return buf, int(decoder.BitDepth), nil
}

// encodeWAV writes a planar float buffer as interleaved PCM at the
// given bit depth.
func encodeWAV(path string, buf *audio.Buffer, bitDepth int) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		bitDepth = 16
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	channels := buf.Channels()
	frames := buf.Frames()
	scale := float64(int(1) << (bitDepth - 1))

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  int(buf.SampleRate),
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, frames*channels),
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			v := buf.Data[ch][i] * scale

			if v > scale-1 {
				v = scale - 1
			} else if v < -scale {
				v = -scale
			}

			intBuf.Data[i*channels+ch] = int(v)
		}
	}

	encoder := wav.NewEncoder(f, int(buf.SampleRate), bitDepth, channels, 1)

	if err := encoder.Write(intBuf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return nil
}
