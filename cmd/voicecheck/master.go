package main

import (
	"context"
	"fmt"

	"github.com/cwbudde/voicecheck/mastering"
)

type masterCmd struct {
	In  string `arg:"" type:"existingfile" help:"WAV file to master"`
	Out string `arg:"" type:"path" help:"Destination WAV file"`

	Target  float64 `default:"-14" help:"Target integrated loudness in LUFS"`
	Ceiling float64 `default:"-1" help:"True-peak ceiling in dBTP"`
}

func (c *masterCmd) Run() error {
	buf, bitDepth, err := decodeWAV(c.In)
	if err != nil {
		return err
	}

	p := mastering.NewPipeline(
		mastering.WithTargetLUFS(c.Target),
		mastering.WithCeiling(c.Ceiling),
	)

	res, err := p.ProcessForStreaming(context.Background(), c.In, buf)
	if err != nil {
		return fmt.Errorf("master %s: %w", c.In, err)
	}

	if err := encodeWAV(c.Out, res.Buffer, bitDepth); err != nil {
		return err
	}

	fmt.Print(renderMastering(c.In, c.Out, res))

	return nil
}
