package noisefp

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Character labels the dominant structure of a noise capture.
type Character int

const (
	// Broadband noise has a flat spectrum without dominant components.
	Broadband Character = iota

	// Hum has concentrated energy at the mains frequency or its first
	// harmonic.
	Hum

	// Tonal noise has a dominant narrowband component somewhere other
	// than the mains bins.
	Tonal
)

func (c Character) String() string {
	switch c {
	case Broadband:
		return "broadband"
	case Hum:
		return "hum"
	case Tonal:
		return "tonal"
	default:
		return "unknown"
	}
}

// Classification thresholds. Flatness near 1 means white-like noise;
// a mains share above humEnergyShare marks the capture as hum.
const (
	flatnessBroadband = 0.25
	humEnergyShare    = 0.1

	// Mains fundamentals checked along with their first harmonic.
	mainsLowHz  = 50.0
	mainsHighHz = 60.0

	// Bins this close to a mains frequency count toward it.
	mainsBinToleranceHz = 2.0
)

// Fingerprint is the spectral summary of one noise capture.
type Fingerprint struct {
	Character Character

	// Flatness is the geometric over arithmetic mean ratio of the
	// power spectrum, in (0, 1]. White noise approaches 1.
	Flatness float64

	// MainsShare is the fraction of spectral energy within the mains
	// bins (50/60 Hz and first harmonics).
	MainsShare float64

	// MainsHz is the mains fundamental with more energy, 50 or 60.
	MainsHz float64
}

// Analyzer computes noise fingerprints over fixed-size windows.
type Analyzer struct {
	sampleRate float64
	fftSize    int

	plan    *algofft.Plan[complex128]
	window  []float64
	scratch []float64
	freq    []complex128
	power   []float64
}

// NewAnalyzer creates an analyzer for the given sample rate. fftSize
// must be a power of two; 8192 gives ~6 Hz resolution at 48 kHz, tight
// enough to separate 50 from 60 Hz.
func NewAnalyzer(sampleRate float64, fftSize int) (*Analyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %f", sampleRate)
	}

	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 16: %d", fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("noisefp: failed to create FFT plan: %w", err)
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		plan:       plan,
		window:     make([]float64, fftSize),
		scratch:    make([]float64, fftSize),
		freq:       make([]complex128, fftSize),
		power:      make([]float64, fftSize/2),
	}

	// Hann window.
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return a, nil
}

// Analyze fingerprints a capture. Input shorter than the FFT size is
// zero-padded; longer input uses averaged spectra over consecutive
// windows.
func (a *Analyzer) Analyze(samples []float64) (Fingerprint, error) {
	if len(samples) == 0 {
		return Fingerprint{}, fmt.Errorf("noisefp: empty capture")
	}

	for i := range a.power {
		a.power[i] = 0
	}

	windows := 0

	for start := 0; start == 0 || start+a.fftSize <= len(samples); start += a.fftSize {
		n := copy(a.scratch, samples[start:min(start+a.fftSize, len(samples))])
		for i := n; i < a.fftSize; i++ {
			a.scratch[i] = 0
		}

		vecmath.MulBlockInPlace(a.scratch, a.window)

		in := make([]complex128, a.fftSize)
		for i, v := range a.scratch {
			in[i] = complex(v, 0)
		}

		if err := a.plan.Forward(a.freq, in); err != nil {
			return Fingerprint{}, fmt.Errorf("noisefp: fft: %w", err)
		}

		for i := range a.power {
			m := cmplx.Abs(a.freq[i])
			a.power[i] += m * m
		}

		windows++
	}

	for i := range a.power {
		a.power[i] /= float64(windows)
	}

	return a.classify(), nil
}

func (a *Analyzer) classify() Fingerprint {
	// Skip the DC bin: it carries offset, not noise character.
	spectrum := a.power[1:]

	fp := Fingerprint{Flatness: spectralFlatness(spectrum)}

	var total float64
	for _, p := range spectrum {
		total += p
	}

	if total <= 0 {
		fp.Character = Broadband
		fp.Flatness = 1

		return fp
	}

	low := a.mainsEnergy(mainsLowHz)
	high := a.mainsEnergy(mainsHighHz)

	fp.MainsHz = mainsLowHz
	mains := low

	if high > low {
		fp.MainsHz = mainsHighHz
		mains = high
	}

	fp.MainsShare = mains / total

	switch {
	case fp.MainsShare > humEnergyShare:
		fp.Character = Hum
	case fp.Flatness < flatnessBroadband:
		fp.Character = Tonal
	default:
		fp.Character = Broadband
	}

	return fp
}

// mainsEnergy sums power near the fundamental and its first harmonic.
func (a *Analyzer) mainsEnergy(fundamentalHz float64) float64 {
	var sum float64

	for _, f := range [2]float64{fundamentalHz, 2 * fundamentalHz} {
		sum += a.bandEnergy(f-mainsBinToleranceHz, f+mainsBinToleranceHz)
	}

	return sum
}

func (a *Analyzer) bandEnergy(fromHz, toHz float64) float64 {
	binHz := a.sampleRate / float64(a.fftSize)

	lo := max(int(math.Floor(fromHz/binHz)), 1)
	hi := min(int(math.Ceil(toHz/binHz)), len(a.power)-1)

	var sum float64
	for i := lo; i <= hi; i++ {
		sum += a.power[i]
	}

	return sum
}

// spectralFlatness is the geometric over arithmetic mean ratio of the
// power spectrum. Computed in the log domain to avoid underflow.
func spectralFlatness(power []float64) float64 {
	if len(power) == 0 {
		return 1
	}

	const eps = 1e-30

	var logSum, sum float64

	for _, p := range power {
		logSum += math.Log(p + eps)
		sum += p + eps
	}

	n := float64(len(power))
	geo := math.Exp(logSum / n)
	arith := sum / n

	return geo / arith
}
