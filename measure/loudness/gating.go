package loudness

import (
	"errors"
	"math"
)

// Gating parameters from BS.1770.
const (
	// AbsoluteGateLUFS is the absolute gate: blocks at or below this
	// level are discarded before anything else.
	AbsoluteGateLUFS = -70.0

	// RelativeGateLU is the relative gate offset below the ungated
	// loudness of the absolute-gate survivors.
	RelativeGateLU = 10.0
)

var (
	// ErrInsufficientData indicates the input produced zero measurement
	// blocks (shorter than one 400 ms window). The loudness value is
	// NaN in this case.
	ErrInsufficientData = errors.New("loudness: insufficient data")

	// ErrNoVoiceDetected indicates every block gated out at the
	// absolute gate: the capture measured as silence. The loudness
	// value is -Inf in this case, which is distinct from "too short to
	// measure".
	ErrNoVoiceDetected = errors.New("loudness: no voice detected")
)

// GatingResult carries the integrated loudness together with the block
// counts of each gating stage, for diagnostics.
type GatingResult struct {
	// Loudness is the gated integrated loudness in LUFS. NaN with
	// ErrInsufficientData, -Inf with ErrNoVoiceDetected.
	Loudness float64

	// Ungated is the loudness of the absolute-gate survivors before
	// relative gating. NaN when there are none.
	Ungated float64

	TotalBlocks    int
	AbsGatedBlocks int
	RelGatedBlocks int

	// UsedUngated reports that the relative gate removed every block
	// and the ungated loudness was returned instead. This is a warning
	// condition, not an error.
	UsedUngated bool
}

// BlockLUFS converts a block mean-square value to LUFS. Non-positive
// input converts to -Inf.
func BlockLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return math.Inf(-1)
	}

	return -0.691 + 10*math.Log10(meanSquare)
}

// Integrate computes gated integrated loudness from block mean-square
// values per BS.1770: absolute gate at -70 LUFS, then a relative gate
// 10 LU below the ungated survivor loudness.
func Integrate(blocks []float64) (GatingResult, error) {
	return integrate(blocks, RelativeGateLU)
}

func integrate(blocks []float64, relativeGateLU float64) (GatingResult, error) {
	res := GatingResult{
		Loudness:    math.NaN(),
		Ungated:     math.NaN(),
		TotalBlocks: len(blocks),
	}

	if len(blocks) == 0 {
		return res, ErrInsufficientData
	}

	var (
		absGated    []float64
		absGatedSum float64
	)

	for _, b := range blocks {
		if BlockLUFS(b) > AbsoluteGateLUFS {
			absGated = append(absGated, b)
			absGatedSum += b
		}
	}

	res.AbsGatedBlocks = len(absGated)

	if len(absGated) == 0 {
		res.Loudness = math.Inf(-1)
		return res, ErrNoVoiceDetected
	}

	res.Ungated = BlockLUFS(absGatedSum / float64(len(absGated)))

	gammaRel := res.Ungated - relativeGateLU

	var (
		relGatedSum   float64
		relGatedCount int
	)

	for _, b := range absGated {
		if BlockLUFS(b) > gammaRel {
			relGatedSum += b
			relGatedCount++
		}
	}

	res.RelGatedBlocks = relGatedCount

	if relGatedCount == 0 {
		// Relative gate removed everything. Fall back to the ungated
		// loudness and flag it, rather than reporting silence.
		res.Loudness = res.Ungated
		res.UsedUngated = true

		return res, nil
	}

	res.Loudness = BlockLUFS(relGatedSum / float64(relGatedCount))

	return res, nil
}
