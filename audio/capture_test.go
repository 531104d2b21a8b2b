package audio

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// trickleSource delivers samples in small chunks with optional stalls.
type trickleSource struct {
	samples []float64
	pos     int
	chunk   int

	// stallEvery inserts a "no samples yet" read between chunks.
	stallEvery int
	reads      int
}

func (s *trickleSource) Read(dst []float64) (int, error) {
	s.reads++

	if s.stallEvery > 0 && s.reads%s.stallEvery == 0 {
		return 0, nil
	}

	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(dst[:min(len(dst), s.chunk)], s.samples[s.pos:])
	s.pos += n

	return n, nil
}

func (s *trickleSource) Decode() (*Buffer, error) { return nil, io.EOF }
func (s *trickleSource) Close() error             { return nil }

func TestCapture_CollectsExpectedSamples(t *testing.T) {
	samples := make([]float64, 4800)
	for i := range samples {
		samples[i] = float64(i)
	}

	src := &trickleSource{samples: samples, chunk: 256}

	res, err := Capture(context.Background(), src, 50*time.Millisecond, 48000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if len(res.Samples) != 2400 {
		t.Fatalf("collected %d samples, want 2400", len(res.Samples))
	}

	if res.Coverage != 1.0 {
		t.Errorf("coverage = %v, want 1.0", res.Coverage)
	}

	// Order preserved.
	for i, s := range res.Samples {
		if s != float64(i) {
			t.Fatalf("sample %d out of order: %v", i, s)
		}
	}
}

func TestCapture_EarlyEOFReducesCoverage(t *testing.T) {
	src := &trickleSource{samples: make([]float64, 1200), chunk: 256}

	res, err := Capture(context.Background(), src, 50*time.Millisecond, 48000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if len(res.Samples) != 1200 {
		t.Errorf("collected %d samples, want 1200", len(res.Samples))
	}

	if res.Coverage < 0.49 || res.Coverage > 0.51 {
		t.Errorf("coverage = %v, want ~0.5", res.Coverage)
	}
}

func TestCapture_ToleratesStalls(t *testing.T) {
	src := &trickleSource{samples: make([]float64, 1200), chunk: 800, stallEvery: 3}

	res, err := Capture(context.Background(), src, 150*time.Millisecond, 48000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if len(res.Samples) != 1200 {
		t.Errorf("collected %d samples despite stalls, want 1200", len(res.Samples))
	}
}

func TestCapture_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &trickleSource{samples: make([]float64, 48000), chunk: 256}

	if _, err := Capture(ctx, src, time.Second, 48000); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCapture_Validation(t *testing.T) {
	src := &trickleSource{samples: make([]float64, 100), chunk: 10}

	if _, err := Capture(context.Background(), nil, time.Second, 48000); err == nil {
		t.Error("expected error for nil source")
	}

	if _, err := Capture(context.Background(), src, 0, 48000); err == nil {
		t.Error("expected error for zero duration")
	}

	if _, err := Capture(context.Background(), src, time.Second, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
