package audio

import (
	"context"
	"errors"
	"io"
	"math"
	"time"
)

// pollInterval is how long the capture loop sleeps when the source has
// no samples ready.
const pollInterval = 5 * time.Millisecond

// CaptureResult holds samples collected during a fixed-duration window.
//
// Coverage is the ratio of collected to expected samples. Values well
// below 1.0 indicate dropouts or scheduling stalls; callers should
// surface that as a reliability flag rather than trusting the
// measurement.
type CaptureResult struct {
	Samples  []float64
	Coverage float64
}

// Capture collects samples from src for the given wall-clock duration.
//
// The loop self-terminates at the deadline regardless of sample-arrival
// jitter. An early io.EOF ends collection without error; the coverage
// ratio reflects the shortfall. Cancelling ctx aborts the capture and
// returns the context error.
func Capture(ctx context.Context, src Source, duration time.Duration, sampleRate float64) (CaptureResult, error) {
	if src == nil {
		return CaptureResult{}, errors.New("audio: capture requires a source")
	}

	if duration <= 0 || sampleRate <= 0 {
		return CaptureResult{}, errors.New("audio: capture requires positive duration and sample rate")
	}

	expected := int(math.Round(duration.Seconds() * sampleRate))
	samples := make([]float64, 0, expected)
	chunk := make([]float64, max(expected/100, 64))
	deadline := time.Now().Add(duration)

	for time.Now().Before(deadline) && len(samples) < expected {
		if err := ctx.Err(); err != nil {
			return CaptureResult{}, err
		}

		want := min(expected-len(samples), len(chunk))

		n, err := src.Read(chunk[:want])
		samples = append(samples, chunk[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return CaptureResult{}, err
		}

		if n == 0 {
			time.Sleep(pollInterval)
		}
	}

	coverage := 0.0
	if expected > 0 {
		coverage = float64(len(samples)) / float64(expected)
	}

	return CaptureResult{Samples: samples, Coverage: coverage}, nil
}
