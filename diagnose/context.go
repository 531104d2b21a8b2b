package diagnose

import (
	"errors"
	"math"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/measure/balance"
	"github.com/cwbudde/voicecheck/measure/noisefp"
)

// ErrSourceUnavailable indicates the sample source could not be
// acquired or has gone away. Callers retry only on explicit user
// action, not automatically.
var ErrSourceUnavailable = errors.New("diagnose: sample source unavailable")

// ErrSourceHeld indicates a source is still attached; Teardown is
// mandatory before attaching another one. This guards structurally
// against leaking device resources across re-acquisition.
var ErrSourceHeld = errors.New("diagnose: previous source not torn down")

// Context carries the mutable per-session state shared by a run's
// tests. Exactly one runner owns a context; it is never shared across
// concurrent sessions.
type Context struct {
	source     audio.Source
	sampleRate float64

	// Accumulated measurements. NaN until the producing test ran.
	NoiseFloorDB float64
	VoiceLUFS    float64
	SNRDB        float64
	PeakDB       float64

	// Coverage is the sample-coverage integrity ratio of the last
	// capture: expected vs. actually collected samples. A low value
	// flags an unreliable measurement.
	Coverage float64

	Balance     *balance.Result
	Fingerprint *noisefp.Fingerprint
}

// NewContext creates an empty session context.
func NewContext() *Context {
	dc := &Context{}
	dc.resetMeasurements()

	return dc
}

// AttachSource hands a sample source to the session. Fails with
// ErrSourceHeld if the previous source was not torn down first.
func (dc *Context) AttachSource(src audio.Source, sampleRate float64) error {
	if src == nil {
		return ErrSourceUnavailable
	}

	if dc.source != nil {
		return ErrSourceHeld
	}

	dc.source = src
	dc.sampleRate = sampleRate

	return nil
}

// Source returns the attached sample source, or ErrSourceUnavailable.
func (dc *Context) Source() (audio.Source, error) {
	if dc.source == nil {
		return nil, ErrSourceUnavailable
	}

	return dc.source, nil
}

// SampleRate returns the attached source's sample rate, zero when no
// source is attached.
func (dc *Context) SampleRate() float64 { return dc.sampleRate }

// Teardown closes the attached source and clears every accumulated
// measurement. It is idempotent and mandatory before re-acquisition.
func (dc *Context) Teardown() error {
	var err error

	if dc.source != nil {
		err = dc.source.Close()
		dc.source = nil
	}

	dc.sampleRate = 0
	dc.resetMeasurements()

	return err
}

func (dc *Context) resetMeasurements() {
	dc.NoiseFloorDB = math.NaN()
	dc.VoiceLUFS = math.NaN()
	dc.SNRDB = math.NaN()
	dc.PeakDB = math.NaN()
	dc.Coverage = 0
	dc.Balance = nil
	dc.Fingerprint = nil
}
