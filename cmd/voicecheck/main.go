// Command voicecheck measures the communication quality of voice
// recordings and masters them for streaming delivery.
//
// Usage:
//
//	voicecheck analyze recording.wav [--json]
//	voicecheck master raw.wav mastered.wav [--target -14] [--ceiling -1]
package main

import (
	"github.com/alecthomas/kong"
)

var version = "0.1.0"

type cli struct {
	Version kong.VersionFlag `short:"v" help:"Show version information"`

	Analyze analyzeCmd `cmd:"" help:"Measure a WAV recording and print a quality report"`
	Master  masterCmd  `cmd:"" help:"Run the mastering chain on a WAV recording"`
}

func main() {
	cliArgs := &cli{}

	ctx := kong.Parse(cliArgs,
		kong.Name("voicecheck"),
		kong.Description("Voice recording quality assessment and mastering"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
	)

	ctx.FatalIfErrorf(ctx.Run())
}
