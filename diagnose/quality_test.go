package diagnose

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/internal/testutil"
)

const testRate = 48000.0

// fastDurations keeps capture windows short for tests.
func fastDurations() []QualityOption {
	return []QualityOption{
		WithNoiseFloorDuration(100 * time.Millisecond),
		WithVoiceDuration(500 * time.Millisecond),
		WithFingerprintDuration(100 * time.Millisecond),
	}
}

func qualityRunner(t *testing.T, buf *audio.Buffer, opts ...QualityOption) *Runner {
	t.Helper()

	r := NewRunner(NewContext())

	if buf != nil {
		src, err := audio.NewBufferSource(buf)
		if err != nil {
			t.Fatalf("NewBufferSource: %v", err)
		}

		if err := r.Context().AttachSource(src, buf.SampleRate); err != nil {
			t.Fatalf("AttachSource: %v", err)
		}
	}

	if err := RegisterQualityTests(r, append(fastDurations(), opts...)...); err != nil {
		t.Fatalf("RegisterQualityTests: %v", err)
	}

	return r
}

// goodSession builds a stereo clip laid out to match the sequential
// capture windows: quiet noise, then a -18 LUFS tone, then noise again.
func goodSession(t *testing.T) *audio.Buffer {
	t.Helper()

	var mono []float64
	mono = append(mono, testutil.DeterministicNoise(1, 0.001, 4800)...)
	mono = append(mono, testutil.DeterministicSine(1000, testRate, 0.1784, 24000)...)
	mono = append(mono, testutil.DeterministicNoise(2, 0.001, 4800)...)

	left := make([]float64, len(mono))
	right := make([]float64, len(mono))
	copy(left, mono)
	copy(right, mono)

	return &audio.Buffer{SampleRate: testRate, Data: [][]float64{left, right}}
}

func TestQuality_GoodSessionPasses(t *testing.T) {
	r := qualityRunner(t, goodSession(t))

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	res := r.Results()

	for _, id := range []string{TestNoiseFloor, TestVoiceLoudness, TestSNR, TestPeak, TestBalance} {
		if res[id].Status != StatusPass {
			t.Errorf("%s: %v (%s)", id, res[id].Status, res[id].Message)
		}
	}

	if r.Overall() != StatusPass {
		t.Errorf("overall = %v, want pass", r.Overall())
	}

	dc := r.Context()

	if dc.NoiseFloorDB > -50 {
		t.Errorf("noise floor %v unexpectedly high", dc.NoiseFloorDB)
	}

	testutil.RequireNear(t, dc.VoiceLUFS, -15, 3.5)

	if dc.SNRDB < 30 {
		t.Errorf("SNR %v unexpectedly low", dc.SNRDB)
	}
}

func TestQuality_SilenceFailsVoiceAndSkipsSNR(t *testing.T) {
	buf := &audio.Buffer{
		SampleRate: testRate,
		Data:       [][]float64{make([]float64, 2*48000)},
	}

	r := qualityRunner(t, buf)

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	res := r.Results()

	voice := res[TestVoiceLoudness]
	if voice.Status != StatusFail {
		t.Fatalf("voice status = %v, want fail", voice.Status)
	}

	if !strings.Contains(voice.Message, "no voice") || voice.Fix == "" {
		t.Errorf("voice failure lacks message/fix: %+v", voice)
	}

	if res[TestSNR].Status != StatusSkip {
		t.Errorf("snr status = %v, want skip after voice failure", res[TestSNR].Status)
	}

	if r.Overall() != StatusFail {
		t.Errorf("overall = %v, want fail", r.Overall())
	}
}

func TestQuality_DeadChannelFailsBalance(t *testing.T) {
	n := 2 * 48000
	left := testutil.DeterministicSine(1000, testRate, 0.1784, n)
	right := testutil.DeterministicNoise(5, 0.0005, n)

	r := qualityRunner(t, &audio.Buffer{
		SampleRate: testRate,
		Data:       [][]float64{left, right},
	})

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	bal := r.Results()[TestBalance]
	if bal.Status != StatusFail {
		t.Fatalf("balance status = %v (%s), want fail", bal.Status, bal.Message)
	}

	dc := r.Context()
	if dc.Balance == nil || !dc.Balance.HasDeadChannel || dc.Balance.DeadSide != 1 {
		t.Errorf("unexpected balance result: %+v", dc.Balance)
	}
}

func TestQuality_MonoSkipsBalance(t *testing.T) {
	r := qualityRunner(t, &audio.Buffer{
		SampleRate: testRate,
		Data:       [][]float64{testutil.DeterministicSine(1000, testRate, 0.1784, 2 * 48000)},
	})

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	if got := r.Results()[TestBalance].Status; got != StatusSkip {
		t.Errorf("balance status = %v, want skip for mono", got)
	}
}

func TestQuality_NoSourceFailsCaptures(t *testing.T) {
	r := qualityRunner(t, nil)

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	res := r.Results()

	if res[TestNoiseFloor].Status != StatusFail || res[TestNoiseFloor].Fix == "" {
		t.Errorf("noise floor without a source: %+v", res[TestNoiseFloor])
	}

	if res[TestSNR].Status != StatusSkip {
		t.Errorf("snr status = %v, want skip", res[TestSNR].Status)
	}
}

func TestQuality_HumWarnsWithGroundingAdvice(t *testing.T) {
	// Noise-floor window of hum, then enough tone for the voice window,
	// then hum again for the fingerprint window.
	var mono []float64
	mono = append(mono, testutil.DeterministicSine(50, testRate, 0.003, 4800)...)
	mono = append(mono, testutil.DeterministicSine(1000, testRate, 0.1784, 24000)...)
	mono = append(mono, testutil.DeterministicSine(50, testRate, 0.003, 14400)...)

	// The fingerprint window is long enough here for one full FFT frame.
	r := qualityRunner(t, &audio.Buffer{SampleRate: testRate, Data: [][]float64{mono}},
		WithFingerprintDuration(300*time.Millisecond))

	if err := r.RunQuality(context.Background()); err != nil {
		t.Fatalf("RunQuality: %v", err)
	}

	fp := r.Results()[TestNoiseCharacter]
	if fp.Status != StatusWarn {
		t.Fatalf("noise character = %v (%s), want warn", fp.Status, fp.Message)
	}

	if !strings.Contains(fp.Fix, "grounding") {
		t.Errorf("hum fix should mention grounding: %q", fp.Fix)
	}

	dc := r.Context()
	if dc.Fingerprint == nil {
		t.Fatal("fingerprint not stored on the context")
	}
}

func TestQuality_DurationOptionsApply(t *testing.T) {
	cfg := ApplyQualityOptions(
		WithNoiseFloorDuration(time.Second),
		WithVoiceDuration(2*time.Second),
		WithFingerprintDuration(3*time.Second),
	)

	if cfg.NoiseFloorDuration != time.Second ||
		cfg.VoiceDuration != 2*time.Second ||
		cfg.FingerprintDuration != 3*time.Second {
		t.Errorf("options not applied: %+v", cfg)
	}

	if ApplyQualityOptions(WithVoiceDuration(-1)).VoiceDuration != 10*time.Second {
		t.Error("non-positive duration should keep the default")
	}
}
