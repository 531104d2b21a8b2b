package loudness

import (
	"github.com/cwbudde/voicecheck/audio"
)

// Meter wires the K-weighting filter bank, per-channel block
// collectors, and the gating calculator into a whole-buffer or
// incremental integrated-loudness measurement.
//
// Per BS.1770 the gating block value is the sum of the per-channel
// block mean squares, so a coherent stereo signal measures ~3 LU above
// the same signal in mono.
type Meter struct {
	sampleRate float64
	channels   int

	kw         *KWeighting
	collectors []*BlockCollector

	scratch []float64
}

// NewMeter creates a new loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}

	m.reconfigure()

	return m
}

func (m *Meter) reconfigure() {
	m.kw = NewKWeighting(m.sampleRate, m.channels)

	m.collectors = make([]*BlockCollector, m.channels)
	for i := range m.channels {
		m.collectors[i] = NewBlockCollector(m.sampleRate)
	}
}

// SampleRate returns the configured sample rate.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Channels returns the configured channel count.
func (m *Meter) Channels() int { return m.channels }

// SetSampleRate reconfigures the meter for a new sample rate,
// discarding accumulated state.
func (m *Meter) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || sampleRate == m.sampleRate {
		return
	}

	m.sampleRate = sampleRate
	m.reconfigure()
}

// Process feeds one slice of samples per channel. All slices must have
// the same length; extra channels are ignored, missing channels leave
// their collector untouched.
func (m *Meter) Process(channels [][]float64) {
	for i := range min(len(channels), m.channels) {
		src := channels[i]

		if cap(m.scratch) < len(src) {
			m.scratch = make([]float64, len(src))
		}

		filtered := m.scratch[:len(src)]
		copy(filtered, src)

		m.kw.ProcessInPlace(i, filtered)
		m.collectors[i].Push(filtered)
	}
}

// ProcessMono feeds mono samples; shorthand for Process on channel 0.
func (m *Meter) ProcessMono(samples []float64) {
	m.Process([][]float64{samples})
}

// Integrated computes the gated integrated loudness over everything
// processed since the last Reset.
func (m *Meter) Integrated() (GatingResult, error) {
	return Integrate(m.summedBlocks())
}

// summedBlocks sums aligned per-channel block mean squares. Channels
// fed unequal amounts contribute up to the shortest block list.
func (m *Meter) summedBlocks() []float64 {
	n := -1

	for _, c := range m.collectors {
		if blocks := len(c.Blocks()); n < 0 || blocks < n {
			n = blocks
		}
	}

	if n <= 0 {
		return nil
	}

	summed := make([]float64, n)
	for _, c := range m.collectors {
		for i, b := range c.Blocks()[:n] {
			summed[i] += b
		}
	}

	return summed
}

// Reset clears filter state and accumulated blocks but keeps the
// configuration.
func (m *Meter) Reset() {
	m.kw.Reset()

	for _, c := range m.collectors {
		c.Reset()
	}
}

// MeasureBuffer measures the integrated loudness of a decoded clip.
func MeasureBuffer(buf *audio.Buffer) (GatingResult, error) {
	if err := buf.Validate(); err != nil {
		return GatingResult{}, err
	}

	m := NewMeter(WithSampleRate(buf.SampleRate), WithChannels(buf.Channels()))
	m.Process(buf.Data)

	return m.Integrated()
}
