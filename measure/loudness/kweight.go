package loudness

import (
	"math"

	"github.com/cwbudde/voicecheck/dsp/biquad"
)

// K-weighting filter parameters from BS.1770: a high-shelf stage
// approximating head diffraction followed by a highpass removing
// sub-audible energy.
const (
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0

	kWeightingHpfFreq = 38.0
	kWeightingHpfQ    = 0.5
)

// KWeighting applies the two cascaded K-weighting stages per channel.
// Coefficients depend on the sample rate and are recomputed when it
// changes. Silent input yields zero output.
type KWeighting struct {
	sampleRate float64
	channels   int

	shelf []*biquad.Section
	hpf   []*biquad.Section
}

// NewKWeighting creates a K-weighting filter bank for the given sample
// rate and channel count.
func NewKWeighting(sampleRate float64, channels int) *KWeighting {
	k := &KWeighting{
		sampleRate: max(sampleRate, 1),
		channels:   max(channels, 1),
	}

	k.reconfigure()

	return k
}

func (k *KWeighting) reconfigure() {
	shelfCoeffs := biquad.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, 1/math.Sqrt2, k.sampleRate)
	hpfCoeffs := biquad.Highpass(kWeightingHpfFreq, kWeightingHpfQ, k.sampleRate)

	k.shelf = make([]*biquad.Section, k.channels)
	k.hpf = make([]*biquad.Section, k.channels)

	for i := range k.channels {
		k.shelf[i] = biquad.NewSection(shelfCoeffs)
		k.hpf[i] = biquad.NewSection(hpfCoeffs)
	}
}

// SampleRate returns the configured sample rate.
func (k *KWeighting) SampleRate() float64 { return k.sampleRate }

// Channels returns the configured channel count.
func (k *KWeighting) Channels() int { return k.channels }

// SetSampleRate recomputes the filter coefficients for a new sample
// rate and clears all filter state.
func (k *KWeighting) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || sampleRate == k.sampleRate {
		return
	}

	k.sampleRate = sampleRate
	k.reconfigure()
}

// ProcessInPlace filters one channel's samples in place.
func (k *KWeighting) ProcessInPlace(channel int, buf []float64) {
	if channel < 0 || channel >= k.channels {
		return
	}

	k.shelf[channel].ProcessBlock(buf)
	k.hpf[channel].ProcessBlock(buf)
}

// Reset clears the filter state of every channel.
func (k *KWeighting) Reset() {
	for i := range k.channels {
		k.shelf[i].Reset()
		k.hpf[i].Reset()
	}
}
