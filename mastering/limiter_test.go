package mastering

import (
	"math"
	"testing"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/internal/testutil"
	"github.com/cwbudde/voicecheck/measure/level"
)

func TestLimiter_HoldsCeiling(t *testing.T) {
	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	buf := monoBuffer(testutil.DeterministicSine(1000, testRate, 1.0, 48000))

	l.ProcessInPlace(buf)

	ceiling := math.Pow(10, -1.0/20)
	tp := level.TruePeak(buf)

	if tp > ceiling*1.001 {
		t.Errorf("true peak %v exceeds ceiling %v", tp, ceiling)
	}

	// A full-scale sine needs steady limiting, so the output should sit
	// just below the ceiling, not far under it.
	if tp < ceiling*0.9 {
		t.Errorf("true peak %v far below ceiling %v, over-limiting", tp, ceiling)
	}
}

func TestLimiter_QuietSignalUntouched(t *testing.T) {
	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	buf := monoBuffer(testutil.DeterministicSine(1000, testRate, 0.25, 24000))
	want := testutil.DeterministicSine(1000, testRate, 0.25, 24000)

	l.ProcessInPlace(buf)

	for i := range want {
		if buf.Data[0][i] != want[i] {
			t.Fatalf("sample %d changed: %v vs %v", i, buf.Data[0][i], want[i])
		}
	}
}

func TestLimiter_ReductionStartsBeforePeak(t *testing.T) {
	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	// Quiet bed with a single hot sample. Look-ahead must pull the
	// samples just before the spike down too.
	samples := testutil.DC(0.1, 9600)
	spike := 4800
	samples[spike] = 1.0

	buf := monoBuffer(samples)
	l.ProcessInPlace(buf)

	if buf.Data[0][spike-1] >= 0.1 {
		t.Errorf("sample before the spike not pre-attenuated: %v", buf.Data[0][spike-1])
	}

	ceiling := math.Pow(10, -1.0/20)
	if buf.Data[0][spike] > ceiling {
		t.Errorf("spike %v exceeds ceiling %v", buf.Data[0][spike], ceiling)
	}
}

func TestLimiter_ReleaseIsGradual(t *testing.T) {
	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	// A hot burst followed by a quiet bed: the gain must recover
	// gradually, not jump back to unity on the next sample.
	samples := testutil.DC(0.1, 48000)
	for i := range 480 {
		samples[i] = 1.0
	}

	buf := monoBuffer(samples)
	l.ProcessInPlace(buf)

	afterBurst := buf.Data[0][480+limiterLookahead+1] / 0.1
	if afterBurst > 0.95 {
		t.Errorf("gain snapped back to %v right after the burst", afterBurst)
	}

	end := buf.Data[0][47999] / 0.1
	if end < 0.99 {
		t.Errorf("gain did not recover by the end: %v", end)
	}
}

func TestLimiter_MultichannelLinked(t *testing.T) {
	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	left := testutil.DeterministicSine(1000, testRate, 1.0, 24000)
	right := testutil.DeterministicSine(1000, testRate, 0.5, 24000)

	buf := &audio.Buffer{SampleRate: testRate, Data: [][]float64{left, right}}
	l.ProcessInPlace(buf)

	// Same gain applies everywhere, so the 2:1 relationship holds.
	for i := 100; i < 24000; i += 977 {
		if math.Abs(buf.Data[0][i]-2*buf.Data[1][i]) > 1e-9 {
			t.Fatalf("channel linkage broken at %d: %v vs %v", i, buf.Data[0][i], buf.Data[1][i])
		}
	}
}

func TestLimiter_Validation(t *testing.T) {
	if _, err := NewLimiter(-1); err == nil {
		t.Error("expected error for negative sample rate")
	}

	l, err := NewLimiter(testRate)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	if err := l.SetCeiling(1); err == nil {
		t.Error("expected error for ceiling above 0 dB")
	}

	if err := l.SetRelease(0); err == nil {
		t.Error("expected error for zero release")
	}
}
