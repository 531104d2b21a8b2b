package mastering

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicecheck/audio"
)

const (
	defaultLimiterCeilingDB = -1.0
	defaultLimiterReleaseMs = 100.0

	// limiterLookahead is how many frames ahead the gain curve looks,
	// so reduction begins before a peak arrives.
	limiterLookahead = 4

	minLimiterCeilingDB = -24.0
	maxLimiterCeilingDB = 0.0
	minLimiterReleaseMs = 1.0
	maxLimiterReleaseMs = 5000.0
)

// Limiter is an offline look-ahead true-peak limiter. It works in
// three passes over the whole buffer: per-frame required gain against
// the ceiling, a look-ahead minimum so reduction starts early, and
// instant-attack/exponential-release smoothing.
//
// Peaks are evaluated with the same 4x linear-interpolation
// oversampling as the true-peak meter, so the ceiling holds under that
// measurement, not under exact polyphase reconstruction.
type Limiter struct {
	ceilingDB  float64
	releaseMs  float64
	sampleRate float64

	ceilingLin   float64
	releaseCoeff float64
}

// NewLimiter creates a limiter at the standard -1 dBTP ceiling with a
// 100 ms release.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("limiter sample rate must be positive: %f", sampleRate)
	}

	l := &Limiter{
		ceilingDB:  defaultLimiterCeilingDB,
		releaseMs:  defaultLimiterReleaseMs,
		sampleRate: sampleRate,
	}

	l.updateCoefficients()

	return l, nil
}

// SetCeiling sets the true-peak ceiling in dBTP.
func (l *Limiter) SetCeiling(dB float64) error {
	if dB < minLimiterCeilingDB || dB > maxLimiterCeilingDB || !isFinite(dB) {
		return fmt.Errorf("limiter ceiling must be in [%f, %f]: %f", minLimiterCeilingDB, maxLimiterCeilingDB, dB)
	}

	l.ceilingDB = dB
	l.updateCoefficients()

	return nil
}

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	if ms < minLimiterReleaseMs || ms > maxLimiterReleaseMs || !isFinite(ms) {
		return fmt.Errorf("limiter release must be in [%f, %f]: %f", minLimiterReleaseMs, maxLimiterReleaseMs, ms)
	}

	l.releaseMs = ms
	l.updateCoefficients()

	return nil
}

func (l *Limiter) Ceiling() float64 { return l.ceilingDB }
func (l *Limiter) Release() float64 { return l.releaseMs }

// ProcessInPlace limits all channels of buf.
func (l *Limiter) ProcessInPlace(buf *audio.Buffer) {
	frames := buf.Frames()
	if frames == 0 {
		return
	}

	// Pass 1: per-frame required gain so the oversampled peak around
	// the frame stays at or under the ceiling.
	required := make([]float64, frames)
	for i := range required {
		peak := l.framePeak(buf, i)

		if peak > l.ceilingLin {
			required[i] = l.ceilingLin / peak
		} else {
			required[i] = 1.0
		}
	}

	// Pass 2: look-ahead minimum over the upcoming frames.
	ahead := make([]float64, frames)
	for i := range ahead {
		g := required[i]

		for j := i + 1; j <= i+limiterLookahead && j < frames; j++ {
			if required[j] < g {
				g = required[j]
			}
		}

		ahead[i] = g
	}

	// Pass 3: instant attack, exponential release.
	env := 1.0
	for i := range frames {
		if ahead[i] < env {
			env = ahead[i]
		} else {
			env = ahead[i] + (env-ahead[i])*l.releaseCoeff
		}

		for c := range buf.Data {
			buf.Data[c][i] *= env
		}
	}
}

// framePeak is the oversampled absolute peak across channels at frame
// i, including the three interpolated points toward frame i+1.
func (l *Limiter) framePeak(buf *audio.Buffer, i int) float64 {
	var peak float64

	for _, ch := range buf.Data {
		s := ch[i]

		if a := math.Abs(s); a > peak {
			peak = a
		}

		if i+1 >= len(ch) {
			continue
		}

		next := ch[i+1]
		for _, t := range [3]float64{0.25, 0.5, 0.75} {
			if a := math.Abs(s + (next-s)*t); a > peak {
				peak = a
			}
		}
	}

	return peak
}

func (l *Limiter) updateCoefficients() {
	l.ceilingLin = math.Pow(10, l.ceilingDB/20)
	l.releaseCoeff = math.Exp(-math.Ln2 / (l.releaseMs * 0.001 * l.sampleRate))
}
