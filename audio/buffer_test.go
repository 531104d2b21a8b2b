package audio

import (
	"errors"
	"testing"
	"time"
)

func TestBuffer_Validate(t *testing.T) {
	cases := []struct {
		name string
		buf  *Buffer
		ok   bool
	}{
		{"valid mono", &Buffer{SampleRate: 48000, Data: [][]float64{{1, 2, 3}}}, true},
		{"valid stereo", &Buffer{SampleRate: 48000, Data: [][]float64{{1, 2}, {3, 4}}}, true},
		{"nil", nil, false},
		{"no channels", &Buffer{SampleRate: 48000}, false},
		{"empty channel", &Buffer{SampleRate: 48000, Data: [][]float64{{}}}, false},
		{"ragged", &Buffer{SampleRate: 48000, Data: [][]float64{{1, 2}, {3}}}, false},
		{"zero rate", &Buffer{Data: [][]float64{{1, 2}}}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.buf.Validate()

			if c.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !c.ok && !errors.Is(err, ErrMalformedBuffer) {
				t.Errorf("expected ErrMalformedBuffer, got %v", err)
			}
		})
	}
}

func TestBuffer_Duration(t *testing.T) {
	buf := &Buffer{SampleRate: 48000, Data: [][]float64{make([]float64, 72000)}}

	if d := buf.Duration(); d != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", d)
	}

	if d := (&Buffer{Data: [][]float64{{1}}}).Duration(); d != 0 {
		t.Errorf("duration without sample rate = %v, want 0", d)
	}
}

func TestBuffer_CloneIsDeep(t *testing.T) {
	buf := &Buffer{SampleRate: 48000, Data: [][]float64{{1, 2}, {3, 4}}}

	clone := buf.Clone()
	clone.Data[0][0] = 99

	if buf.Data[0][0] != 1 {
		t.Error("clone shares backing storage with the original")
	}

	if clone.SampleRate != 48000 || clone.Channels() != 2 {
		t.Errorf("clone lost shape: %+v", clone)
	}
}

func TestBuffer_Mixdown(t *testing.T) {
	buf := &Buffer{SampleRate: 48000, Data: [][]float64{{1, 0, -1}, {0, 1, -1}}}

	mono := buf.Mixdown()
	want := []float64{0.5, 0.5, -1}

	for i := range want {
		if mono[i] != want[i] {
			t.Errorf("mixdown[%d] = %v, want %v", i, mono[i], want[i])
		}
	}
}
