package diagnose

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/measure/balance"
	"github.com/cwbudde/voicecheck/measure/level"
	"github.com/cwbudde/voicecheck/measure/loudness"
	"github.com/cwbudde/voicecheck/measure/noisefp"
	"github.com/cwbudde/voicecheck/report"
)

// Built-in quality test IDs.
const (
	TestNoiseFloor     = "noise-floor"
	TestVoiceLoudness  = "voice-loudness"
	TestSNR            = "snr"
	TestPeak           = "peak"
	TestBalance        = "balance"
	TestNoiseCharacter = "noise-character"
)

// minCoverage is the sample-coverage ratio below which a capture-based
// measurement is flagged as unreliable.
const minCoverage = 0.8

// QualityConfig defines capture durations and rating policy for the
// built-in quality tests.
type QualityConfig struct {
	NoiseFloorDuration  time.Duration
	VoiceDuration       time.Duration
	FingerprintDuration time.Duration

	// FingerprintFFTSize must be a power of two.
	FingerprintFFTSize int

	// Tables overrides individual rating tables; missing entries fall
	// back to report.DefaultTables.
	Tables map[string]report.Table
}

// QualityOption mutates a QualityConfig.
type QualityOption func(*QualityConfig)

// DefaultQualityConfig returns the standard capture windows: 5 s for
// the noise floor, 10 s for voice.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		NoiseFloorDuration:  5 * time.Second,
		VoiceDuration:       10 * time.Second,
		FingerprintDuration: 2 * time.Second,
		FingerprintFFTSize:  8192,
	}
}

// WithNoiseFloorDuration sets the silence capture window.
func WithNoiseFloorDuration(d time.Duration) QualityOption {
	return func(cfg *QualityConfig) {
		if d > 0 {
			cfg.NoiseFloorDuration = d
		}
	}
}

// WithVoiceDuration sets the voice capture window.
func WithVoiceDuration(d time.Duration) QualityOption {
	return func(cfg *QualityConfig) {
		if d > 0 {
			cfg.VoiceDuration = d
		}
	}
}

// WithFingerprintDuration sets the noise-character capture window.
func WithFingerprintDuration(d time.Duration) QualityOption {
	return func(cfg *QualityConfig) {
		if d > 0 {
			cfg.FingerprintDuration = d
		}
	}
}

// WithTables overrides the rating threshold tables.
func WithTables(tables map[string]report.Table) QualityOption {
	return func(cfg *QualityConfig) {
		cfg.Tables = tables
	}
}

// ApplyQualityOptions applies zero or more options to the defaults.
func ApplyQualityOptions(opts ...QualityOption) QualityConfig {
	cfg := DefaultQualityConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// RegisterQualityTests registers the built-in quality tests on the
// runner.
func RegisterQualityTests(r *Runner, opts ...QualityOption) error {
	cfg := ApplyQualityOptions(opts...)

	tests := []Test{
		&noiseFloorTest{cfg: cfg},
		&voiceLoudnessTest{cfg: cfg},
		&snrTest{cfg: cfg},
		&peakTest{cfg: cfg},
		&balanceTest{},
		&noiseCharacterTest{cfg: cfg},
	}

	for _, t := range tests {
		if err := r.Register(t); err != nil {
			return err
		}
	}

	return nil
}

func (cfg QualityConfig) table(name string) report.Table {
	if t, ok := cfg.Tables[name]; ok {
		return t
	}

	return report.DefaultTables()[name]
}

// rated converts a table rating into a test result.
func rated(value float64, t report.Table, what, fix string) Result {
	msg := fmt.Sprintf("%s: %.1f %s", what, value, t.Unit)

	var res Result

	switch t.Rate(value) {
	case report.RatingGood:
		res = Pass(msg)
	case report.RatingAcceptable:
		res = Warn(msg, fix)
	default:
		res = Fail(msg, fix)
	}

	return res.WithDetail("value", value).WithDetail("unit", t.Unit)
}

// withCoverage downgrades a clean pass when the capture lost samples.
func withCoverage(res Result, coverage float64) Result {
	res = res.WithDetail("coverage", coverage)

	if coverage < minCoverage && res.Status == StatusPass {
		res.Status = StatusWarn
		res.Message += fmt.Sprintf(" (only %.0f%% of expected samples collected)", coverage*100)
		res.Fix = "check that the source keeps delivering samples, then re-run"
	}

	return res
}

func capture(ctx context.Context, dc *Context, d time.Duration) (audio.CaptureResult, error) {
	src, err := dc.Source()
	if err != nil {
		return audio.CaptureResult{}, err
	}

	return audio.Capture(ctx, src, d, dc.SampleRate())
}

type noiseFloorTest struct {
	cfg QualityConfig
}

func (t *noiseFloorTest) ID() string { return TestNoiseFloor }
func (t *noiseFloorTest) Scope() Scope { return ScopeQuality }
func (t *noiseFloorTest) Requires() []string { return nil }
func (t *noiseFloorTest) CanRun(*Context, Results) bool { return true }

func (t *noiseFloorTest) Run(ctx context.Context, dc *Context) Result {
	captured, err := capture(ctx, dc, t.cfg.NoiseFloorDuration)
	if err != nil {
		return Fail(
			fmt.Sprintf("could not capture silence window: %v", err),
			"check the selected input device and try again",
		)
	}

	dc.NoiseFloorDB = level.NoiseFloorDB(captured.Samples)
	dc.Coverage = captured.Coverage

	res := rated(dc.NoiseFloorDB, t.cfg.table(report.TableNoiseFloor),
		"noise floor",
		"reduce background noise or move the microphone away from noise sources")

	return withCoverage(res, captured.Coverage)
}

type voiceLoudnessTest struct {
	cfg QualityConfig
}

func (t *voiceLoudnessTest) ID() string { return TestVoiceLoudness }
func (t *voiceLoudnessTest) Scope() Scope { return ScopeQuality }
func (t *voiceLoudnessTest) Requires() []string { return nil }
func (t *voiceLoudnessTest) CanRun(*Context, Results) bool { return true }

func (t *voiceLoudnessTest) Run(ctx context.Context, dc *Context) Result {
	captured, err := capture(ctx, dc, t.cfg.VoiceDuration)
	if err != nil {
		return Fail(
			fmt.Sprintf("could not capture voice window: %v", err),
			"check the selected input device and try again",
		)
	}

	m := loudness.NewMeter(loudness.WithSampleRate(dc.SampleRate()))
	m.ProcessMono(captured.Samples)

	gated, err := m.Integrated()

	switch {
	case errors.Is(err, loudness.ErrNoVoiceDetected):
		return Fail(
			"no voice detected during the capture window",
			"speak normally during the measurement; check that the microphone is not muted",
		)
	case errors.Is(err, loudness.ErrInsufficientData):
		return Fail(
			"capture too short for a loudness measurement",
			"re-run the measurement and keep speaking for the whole window",
		)
	case err != nil:
		return Fail(
			fmt.Sprintf("loudness measurement failed: %v", err),
			"re-run the diagnostics",
		)
	}

	dc.VoiceLUFS = gated.Loudness
	dc.Coverage = captured.Coverage

	res := rated(gated.Loudness, t.cfg.table(report.TableVoiceLoudness),
		"voice loudness",
		"adjust the input gain or speak closer to the microphone")

	if gated.UsedUngated {
		res = res.WithDetail("usedUngated", true)
	}

	return withCoverage(res, captured.Coverage)
}

type snrTest struct {
	cfg QualityConfig
}

func (t *snrTest) ID() string { return TestSNR }
func (t *snrTest) Scope() Scope { return ScopeQuality }
func (t *snrTest) Requires() []string { return []string{TestNoiseFloor, TestVoiceLoudness} }

func (t *snrTest) CanRun(*Context, Results) bool { return true }

func (t *snrTest) Run(_ context.Context, dc *Context) Result {
	dc.SNRDB = level.SNR(dc.VoiceLUFS, dc.NoiseFloorDB)

	return rated(dc.SNRDB, t.cfg.table(report.TableSNR),
		"signal-to-noise ratio",
		"reduce background noise or raise your voice level")
}

type peakTest struct {
	cfg QualityConfig
}

func (t *peakTest) ID() string { return TestPeak }
func (t *peakTest) Scope() Scope { return ScopeQuality }
func (t *peakTest) Requires() []string { return nil }
func (t *peakTest) CanRun(*Context, Results) bool { return true }

func (t *peakTest) Run(_ context.Context, dc *Context) Result {
	src, err := dc.Source()
	if err != nil {
		return Fail(
			fmt.Sprintf("no recording available: %v", err),
			"record a clip before running the peak check",
		)
	}

	buf, err := src.Decode()
	if err != nil {
		return Fail(
			fmt.Sprintf("could not decode the recording: %v", err),
			"record a clip before running the peak check",
		)
	}

	dc.PeakDB = level.DB(level.TruePeak(buf))

	return rated(dc.PeakDB, t.cfg.table(report.TablePeak),
		"peak level",
		"lower the input gain to avoid clipping")
}

type balanceTest struct{}

func (t *balanceTest) ID() string { return TestBalance }
func (t *balanceTest) Scope() Scope { return ScopeQuality }
func (t *balanceTest) Requires() []string { return nil }
func (t *balanceTest) CanRun(*Context, Results) bool { return true }

func (t *balanceTest) Run(_ context.Context, dc *Context) Result {
	src, err := dc.Source()
	if err != nil {
		return Fail(
			fmt.Sprintf("no recording available: %v", err),
			"record a clip before running the balance check",
		)
	}

	buf, err := src.Decode()
	if err != nil {
		return Fail(
			fmt.Sprintf("could not decode the recording: %v", err),
			"record a clip before running the balance check",
		)
	}

	res, ok := balance.Analyze(channelRMSSequences(buf))
	if !ok {
		return Result{Status: StatusSkip, Message: "not applicable to mono sources"}
	}

	dc.Balance = &res

	switch {
	case res.HasDeadChannel:
		return Fail(res.Diagnosis,
			"check the cable and input mapping of the dead channel, or record in mono").
			WithDetail("imbalanceDb", res.ImbalanceDB).
			WithDetail("deadSide", res.DeadSide)
	case res.HasImbalance:
		return Warn(res.Diagnosis, "match the gain of both channels").
			WithDetail("imbalanceDb", res.ImbalanceDB)
	default:
		return Pass(fmt.Sprintf("channels balanced within %.1f dB", res.ImbalanceDB))
	}
}

// channelRMSSequences slices each channel into short windows and
// returns per-window RMS readings, the form the balance analyzer
// expects.
func channelRMSSequences(buf *audio.Buffer) [][]float64 {
	const windowMS = 50

	window := max(int(buf.SampleRate*windowMS/1000), 1)

	out := make([][]float64, buf.Channels())
	for i, ch := range buf.Data {
		for start := 0; start+window <= len(ch); start += window {
			var sum float64
			for _, s := range ch[start : start+window] {
				sum += s * s
			}

			out[i] = append(out[i], math.Sqrt(sum/float64(window)))
		}
	}

	return out
}

type noiseCharacterTest struct {
	cfg QualityConfig
}

func (t *noiseCharacterTest) ID() string { return TestNoiseCharacter }
func (t *noiseCharacterTest) Scope() Scope { return ScopeQuality }
func (t *noiseCharacterTest) Requires() []string { return []string{TestNoiseFloor} }
func (t *noiseCharacterTest) Optional() bool { return true }

func (t *noiseCharacterTest) CanRun(*Context, Results) bool { return true }

func (t *noiseCharacterTest) Run(ctx context.Context, dc *Context) Result {
	captured, err := capture(ctx, dc, t.cfg.FingerprintDuration)
	if err != nil {
		return Fail(
			fmt.Sprintf("could not capture noise window: %v", err),
			"check the selected input device and try again",
		)
	}

	analyzer, err := noisefp.NewAnalyzer(dc.SampleRate(), t.cfg.FingerprintFFTSize)
	if err != nil {
		return Fail(fmt.Sprintf("fingerprint setup failed: %v", err), "re-run the diagnostics")
	}

	fp, err := analyzer.Analyze(captured.Samples)
	if err != nil {
		return Fail(fmt.Sprintf("fingerprint failed: %v", err), "re-run the diagnostics")
	}

	dc.Fingerprint = &fp

	res := Result{Status: StatusPass}

	switch fp.Character {
	case noisefp.Hum:
		res = Warn(
			fmt.Sprintf("mains hum at %.0f Hz dominates the noise floor", fp.MainsHz),
			"check grounding and cabling; move the microphone away from power supplies")
	case noisefp.Tonal:
		res = Warn(
			"a tonal component dominates the noise floor",
			"locate the interfering source (fans, coil whine) and move or disable it")
	default:
		res = Pass("noise floor is broadband")
	}

	return res.WithDetail("flatness", fp.Flatness).WithDetail("mainsShare", fp.MainsShare)
}
