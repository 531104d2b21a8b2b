package balance

import (
	"fmt"
	"math"
)

// Detection thresholds in dB. A channel pair is considered dead-sided
// when the gap alone is extreme, or when one side sits below the noise
// floor while the other carries signal.
const (
	deadImbalanceDB   = 15.0
	lesserImbalanceDB = 6.0
	deadQuietFloorDB  = -42.0
	deadLoudSignalDB  = -35.0

	minDB = -100.0
)

// ChannelLevel summarizes one channel's readings.
type ChannelLevel struct {
	AverageDB float64
	PeakDB    float64
}

// Result is the verdict of a stereo balance analysis.
type Result struct {
	Channels    []ChannelLevel
	ImbalanceDB float64

	HasDeadChannel bool
	DeadSide       int // index into Channels, valid when HasDeadChannel

	HasImbalance bool

	Diagnosis string
}

// Analyze inspects parallel per-channel RMS sequences. The second
// return value is false when no verdict is possible: fewer than two
// channels, or any channel without readings. A verdict is never
// fabricated from partial data.
func Analyze(channels [][]float64) (Result, bool) {
	if len(channels) < 2 {
		return Result{}, false
	}

	for _, ch := range channels {
		if len(ch) == 0 {
			return Result{}, false
		}
	}

	res := Result{Channels: make([]ChannelLevel, len(channels))}
	for i, ch := range channels {
		res.Channels[i] = summarize(ch)
	}

	// The heuristic compares the first two channels; extra channels are
	// summarized but do not affect the verdict.
	a, b := res.Channels[0].AverageDB, res.Channels[1].AverageDB
	res.ImbalanceDB = math.Abs(a - b)

	quiet, loud := 0, 1
	if a > b {
		quiet, loud = 1, 0
	}

	quietDB := res.Channels[quiet].AverageDB
	loudDB := res.Channels[loud].AverageDB

	switch {
	case res.ImbalanceDB > deadImbalanceDB,
		quietDB < deadQuietFloorDB && loudDB > deadLoudSignalDB:
		res.HasDeadChannel = true
		res.DeadSide = quiet
		res.Diagnosis = fmt.Sprintf(
			"channel %d appears dead (%.1f dB below channel %d); "+
				"a silent channel averaged into a mono mix costs about 6 dB of level",
			quiet, res.ImbalanceDB, loud)

	case res.ImbalanceDB > lesserImbalanceDB:
		res.HasImbalance = true
		res.Diagnosis = fmt.Sprintf(
			"channels differ by %.1f dB; check gain staging on channel %d",
			res.ImbalanceDB, quiet)
	}

	return res, true
}

func summarize(readings []float64) ChannelLevel {
	var sum, peak float64

	for _, r := range readings {
		r = math.Abs(r)
		sum += r

		if r > peak {
			peak = r
		}
	}

	return ChannelLevel{
		AverageDB: toDB(sum / float64(len(readings))),
		PeakDB:    toDB(peak),
	}
}

func toDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return minDB
	}

	return max(20*math.Log10(amplitude), minDB)
}
