package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/measure/balance"
	"github.com/cwbudde/voicecheck/measure/level"
	"github.com/cwbudde/voicecheck/measure/loudness"
	"github.com/cwbudde/voicecheck/report"
)

type analyzeCmd struct {
	File       string `arg:"" type:"existingfile" help:"WAV file to analyze"`
	JSON       bool   `help:"Emit the report as JSON instead of a table"`
	Thresholds string `type:"existingfile" optional:"" help:"JSON threshold tables overriding the defaults"`
}

func (c *analyzeCmd) Run() error {
	buf, _, err := decodeWAV(c.File)
	if err != nil {
		return err
	}

	tables := map[string]report.Table{}

	if c.Thresholds != "" {
		f, err := os.Open(c.Thresholds)
		if err != nil {
			return fmt.Errorf("open thresholds: %w", err)
		}
		defer f.Close()

		if tables, err = report.LoadTables(f); err != nil {
			return fmt.Errorf("load thresholds: %w", err)
		}
	}

	res, err := loudness.MeasureBuffer(buf)
	if err != nil {
		switch {
		case errors.Is(err, loudness.ErrInsufficientData):
			return fmt.Errorf("%s is too short to measure loudness", c.File)
		case errors.Is(err, loudness.ErrNoVoiceDetected):
			return fmt.Errorf("no voice detected in %s", c.File)
		default:
			return err
		}
	}

	noiseFloorDB := level.NoiseFloorDB(buf.Mixdown())
	peakDB := level.DB(level.TruePeak(buf))

	doc := report.New(report.Measurements{
		NoiseFloorDB: noiseFloorDB,
		VoiceLUFS:    res.Loudness,
		PeakDB:       peakDB,
		SNRDB:        level.SNR(res.Loudness, noiseFloorDB),
	}, tables)

	if bal, ok := balance.Analyze(channelRMSSequences(buf)); ok {
		doc.Stereo = stereoBlock(bal)

		if bal.HasDeadChannel {
			doc.Overall.Pass = false
			doc.Overall.Issues = append(doc.Overall.Issues, bal.Diagnosis)
		} else if bal.HasImbalance {
			doc.Overall.Issues = append(doc.Overall.Issues, bal.Diagnosis)
		}
	}

	if res.UsedUngated {
		doc.Overall.Issues = append(doc.Overall.Issues,
			"loudness gating fell back to the ungated value")
	}

	if c.JSON {
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	}

	fmt.Print(renderReport(c.File, doc))

	return nil
}

func stereoBlock(bal balance.Result) *report.Stereo {
	s := &report.Stereo{
		ImbalanceDB:    bal.ImbalanceDB,
		HasDeadChannel: bal.HasDeadChannel,
		Diagnosis:      bal.Diagnosis,
	}

	for _, ch := range bal.Channels {
		s.Channels = append(s.Channels, report.StereoChannel{
			AverageDB: ch.AverageDB,
			PeakDB:    ch.PeakDB,
		})
	}

	if bal.HasDeadChannel {
		side := bal.DeadSide
		s.DeadSide = &side
	}

	return s
}

// channelRMSSequences slices each channel into 50 ms windows and
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
