package mastering

import (
	"math"
	"testing"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/internal/testutil"
)

const testRate = 48000.0

func monoBuffer(samples []float64) *audio.Buffer {
	return &audio.Buffer{SampleRate: testRate, Data: [][]float64{samples}}
}

func TestExpander_LoudSignalUntouched(t *testing.T) {
	e, err := NewExpander(testRate)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}

	// -20 dBFS RMS sits well above the -40 dBFS threshold.
	buf := monoBuffer(testutil.DeterministicSine(1000, testRate, 0.1417, 48000))
	want := testutil.DeterministicSine(1000, testRate, 0.1417, 48000)

	e.ProcessInPlace(buf)

	// Skip the first 50 ms of detector settling.
	for i := 2400; i < len(want); i++ {
		if math.Abs(buf.Data[0][i]-want[i]) > 1e-6 {
			t.Fatalf("sample %d changed: %v vs %v", i, buf.Data[0][i], want[i])
		}
	}
}

func TestExpander_QuietSignalAttenuated(t *testing.T) {
	e, err := NewExpander(testRate)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}

	// Constant 0.001 amplitude: the detector settles at -60 dBFS, 20 dB
	// below threshold, so ratio 2 yields 10 dB of reduction.
	buf := monoBuffer(testutil.DC(0.001, 48000))

	e.ProcessInPlace(buf)

	steady := buf.Data[0][24000:]
	wantGain := math.Pow(10, -10.0/20)

	for i, s := range steady {
		gain := s / 0.001
		if math.Abs(gain-wantGain) > 0.02 {
			t.Fatalf("sample %d: gain %v, want ~%v", i, gain, wantGain)
		}
	}
}

func TestExpander_LinkedChannels(t *testing.T) {
	e, err := NewExpander(testRate)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}

	// Quiet material on unequal channels: the same gain must apply to
	// both, preserving their ratio exactly.
	buf := &audio.Buffer{
		SampleRate: testRate,
		Data: [][]float64{
			testutil.DC(0.002, 24000),
			testutil.DC(0.0005, 24000),
		},
	}

	e.ProcessInPlace(buf)

	for i := range buf.Data[0] {
		ratio := buf.Data[0][i] / buf.Data[1][i]
		testutil.RequireNear(t, ratio, 4.0, 1e-9)
	}
}

func TestExpander_SilenceStaysFinite(t *testing.T) {
	e, err := NewExpander(testRate)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}

	buf := monoBuffer(make([]float64, 4800))
	e.ProcessInPlace(buf)

	testutil.RequireFinite(t, buf.Data[0])
}

func TestExpander_Validation(t *testing.T) {
	if _, err := NewExpander(0); err == nil {
		t.Error("expected error for zero sample rate")
	}

	e, err := NewExpander(testRate)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}

	if err := e.SetRatio(0.5); err == nil {
		t.Error("expected error for ratio below 1")
	}

	if err := e.SetThreshold(3); err == nil {
		t.Error("expected error for positive threshold")
	}

	if err := e.SetAttack(0); err == nil {
		t.Error("expected error for zero attack")
	}

	if err := e.SetRelease(math.NaN()); err == nil {
		t.Error("expected error for NaN release")
	}
}
