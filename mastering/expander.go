package mastering

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicecheck/audio"
)

const (
	defaultExpanderThresholdDB = -40.0
	defaultExpanderRatio       = 2.0
	defaultExpanderRMSWindowMs = 10.0
	defaultExpanderAttackMs    = 1.0
	defaultExpanderReleaseMs   = 100.0
	defaultExpanderRangeDB     = -60.0

	minExpanderRatio     = 1.0
	maxExpanderRatio     = 100.0
	minExpanderAttackMs  = 0.1
	maxExpanderAttackMs  = 1000.0
	minExpanderReleaseMs = 1.0
	maxExpanderReleaseMs = 5000.0
)

// Expander attenuates passages below the threshold, pushing breaths
// and room noise further down without touching voiced segments.
//
// The detector is channel-linked: one gain per frame, computed from
// the cross-channel RMS envelope and applied identically to every
// channel, so expansion never shifts the stereo balance.
type Expander struct {
	thresholdDB float64
	ratio       float64
	rmsWindowMs float64
	attackMs    float64
	releaseMs   float64
	rangeDB     float64
	sampleRate  float64

	rmsCoeff     float64
	attackCoeff  float64
	releaseCoeff float64
	rangeLin     float64

	msEnv    float64
	envelope float64
}

// NewExpander creates an expander with the standard voice chain
// settings: threshold -40 dBFS, ratio 2, 10 ms RMS window, 1 ms
// attack, 100 ms release.
func NewExpander(sampleRate float64) (*Expander, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("expander sample rate must be positive: %f", sampleRate)
	}

	e := &Expander{
		thresholdDB: defaultExpanderThresholdDB,
		ratio:       defaultExpanderRatio,
		rmsWindowMs: defaultExpanderRMSWindowMs,
		attackMs:    defaultExpanderAttackMs,
		releaseMs:   defaultExpanderReleaseMs,
		rangeDB:     defaultExpanderRangeDB,
		sampleRate:  sampleRate,
	}

	e.updateCoefficients()

	return e, nil
}

// SetThreshold sets the expansion threshold in dBFS.
func (e *Expander) SetThreshold(dB float64) error {
	if dB > 0 || !isFinite(dB) {
		return fmt.Errorf("expander threshold must be <= 0 dBFS: %f", dB)
	}

	e.thresholdDB = dB

	return nil
}

// SetRatio sets the expansion ratio.
func (e *Expander) SetRatio(ratio float64) error {
	if ratio < minExpanderRatio || ratio > maxExpanderRatio || !isFinite(ratio) {
		return fmt.Errorf("expander ratio must be in [%f, %f]: %f", minExpanderRatio, maxExpanderRatio, ratio)
	}

	e.ratio = ratio

	return nil
}

// SetAttack sets the attack time in milliseconds.
func (e *Expander) SetAttack(ms float64) error {
	if ms < minExpanderAttackMs || ms > maxExpanderAttackMs || !isFinite(ms) {
		return fmt.Errorf("expander attack must be in [%f, %f]: %f", minExpanderAttackMs, maxExpanderAttackMs, ms)
	}

	e.attackMs = ms
	e.updateCoefficients()

	return nil
}

// SetRelease sets the release time in milliseconds.
func (e *Expander) SetRelease(ms float64) error {
	if ms < minExpanderReleaseMs || ms > maxExpanderReleaseMs || !isFinite(ms) {
		return fmt.Errorf("expander release must be in [%f, %f]: %f", minExpanderReleaseMs, maxExpanderReleaseMs, ms)
	}

	e.releaseMs = ms
	e.updateCoefficients()

	return nil
}

func (e *Expander) Threshold() float64  { return e.thresholdDB }
func (e *Expander) Ratio() float64      { return e.ratio }
func (e *Expander) SampleRate() float64 { return e.sampleRate }

// ProcessInPlace expands all channels of buf frame by frame.
func (e *Expander) ProcessInPlace(buf *audio.Buffer) {
	frames := buf.Frames()
	channels := len(buf.Data)

	for i := range frames {
		// Linked detector: mean square across channels.
		var ms float64
		for c := range channels {
			s := buf.Data[c][i]
			ms += s * s
		}

		ms /= float64(channels)

		// RMS window, then asymmetric attack/release smoothing.
		e.msEnv += (ms - e.msEnv) * e.rmsCoeff
		rms := math.Sqrt(e.msEnv)

		if rms > e.envelope {
			e.envelope += (rms - e.envelope) * e.attackCoeff
		} else {
			e.envelope = rms + (e.envelope-rms)*e.releaseCoeff
		}

		gain := e.gainFor(e.envelope)

		for c := range channels {
			buf.Data[c][i] *= gain
		}
	}
}

// gainFor computes the static expansion gain for an envelope level.
func (e *Expander) gainFor(level float64) float64 {
	if level <= 0 {
		return e.rangeLin
	}

	levelDB := 20 * math.Log10(level)
	if levelDB >= e.thresholdDB {
		return 1.0
	}

	reductionDB := (e.thresholdDB - levelDB) * (e.ratio - 1.0) / e.ratio

	gain := math.Pow(10, -reductionDB/20)
	if gain < e.rangeLin {
		return e.rangeLin
	}

	return gain
}

// Reset clears detector state.
func (e *Expander) Reset() {
	e.msEnv = 0
	e.envelope = 0
}

func (e *Expander) updateCoefficients() {
	e.rmsCoeff = 1.0 - math.Exp(-1.0/(e.rmsWindowMs*0.001*e.sampleRate))
	e.attackCoeff = 1.0 - math.Exp(-math.Ln2/(e.attackMs*0.001*e.sampleRate))
	e.releaseCoeff = math.Exp(-math.Ln2 / (e.releaseMs * 0.001 * e.sampleRate))
	e.rangeLin = math.Pow(10, e.rangeDB/20)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
