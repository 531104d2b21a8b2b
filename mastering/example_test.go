package mastering_test

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/mastering"
)

func ExamplePipeline_ProcessForStreaming() {
	const sampleRate = 48000

	// Five seconds of a 1 kHz tone at roughly -20 LUFS.
	samples := make([]float64, 5*sampleRate)
	for i := range samples {
		samples[i] = 0.1417 * math.Sin(2*math.Pi*1000*float64(i)/sampleRate)
	}

	buf := &audio.Buffer{SampleRate: sampleRate, Data: [][]float64{samples}}

	p := mastering.NewPipeline()

	res, err := p.ProcessForStreaming(context.Background(), "take-1", buf)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("input:  %.0f LUFS\n", res.InputLUFS)
	fmt.Printf("output: %.0f LUFS\n", res.OutputLUFS)
	// Output:
	// input:  -20 LUFS
	// output: -14 LUFS
}
