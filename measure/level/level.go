package level

import (
	"math"
	"sort"

	"github.com/cwbudde/voicecheck/audio"
)

const (
	// MinRMSDB is the floor for instantaneous level readings.
	MinRMSDB = -60.0

	// MinNoiseFloorDB is the floor for noise-floor readings. Quieter
	// than instantaneous level on purpose: real noise floors sit well
	// below -60 dBFS.
	MinNoiseFloorDB = -120.0
)

// RMSDB computes the RMS level of a raw time-domain window in dBFS,
// floor-clamped at MinRMSDB. No frequency weighting is applied.
func RMSDB(samples []float64) float64 {
	if len(samples) == 0 {
		return MinRMSDB
	}

	var sum float64
	for _, s := range samples {
		sum += s * s
	}

	rms := math.Sqrt(sum / float64(len(samples)))

	return max(20*math.Log10(rms), MinRMSDB)
}

// NoiseFloorDB estimates the noise floor of a silence capture in dBFS.
// It sorts the absolute sample values ascending and averages the lower
// half, a median-like estimator that rejects transient noises during
// the capture window. Averaging the full set instead would bias the
// estimate upward on any accidental sound.
func NoiseFloorDB(samples []float64) float64 {
	if len(samples) == 0 {
		return MinNoiseFloorDB
	}

	sorted := make([]float64, len(samples))
	for i, s := range samples {
		sorted[i] = math.Abs(s)
	}

	sort.Float64s(sorted)

	half := max(len(sorted)/2, 1)

	var sum float64
	for _, s := range sorted[:half] {
		sum += s
	}

	avg := sum / float64(half)

	return max(20*math.Log10(avg), MinNoiseFloorDB)
}

// SamplePeak returns the maximum absolute sample value across all
// channels of the buffer.
func SamplePeak(buf *audio.Buffer) float64 {
	var peak float64

	for _, ch := range buf.Data {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}

	return peak
}

// TruePeak returns an estimate of the inter-sample peak across all
// channels using 4x oversampling: three linearly interpolated points
// are evaluated between each adjacent sample pair. See the package
// documentation for the accuracy caveat.
func TruePeak(buf *audio.Buffer) float64 {
	var peak float64

	for _, ch := range buf.Data {
		peak = max(peak, truePeakChannel(ch))
	}

	return peak
}

func truePeakChannel(samples []float64) float64 {
	var peak float64

	for i, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}

		if i == 0 {
			continue
		}

		prev := samples[i-1]
		for _, t := range [3]float64{0.25, 0.5, 0.75} {
			if a := math.Abs(prev + (s-prev)*t); a > peak {
				peak = a
			}
		}
	}

	return peak
}

// DB converts a linear amplitude to dBFS. Zero maps to -Inf.
func DB(amplitude float64) float64 {
	return 20 * math.Log10(amplitude)
}

// SNR computes the signal-to-noise ratio in dB between a voice
// loudness reading (LUFS) and a noise-floor reading (dBFS). The two
// scales differ by the K-weighting offset but the difference is a
// useful relative measure.
func SNR(voiceLUFS, noiseFloorDB float64) float64 {
	return voiceLUFS - noiseFloorDB
}
