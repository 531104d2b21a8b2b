package mastering

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/measure/loudness"
)

// DefaultTargetLUFS is the streaming loudness target.
const DefaultTargetLUFS = -14.0

// measuredLUFS measures gated integrated loudness, mapping both
// unmeasurable outcomes to ErrTooQuiet.
func measuredLUFS(buf *audio.Buffer) (float64, error) {
	res, err := loudness.MeasureBuffer(buf)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %s", ErrTooQuiet, err)
	}

	if math.IsNaN(res.Loudness) || math.IsInf(res.Loudness, 0) {
		return math.NaN(), ErrTooQuiet
	}

	return res.Loudness, nil
}

// Normalize measures buf and applies the uniform gain that brings its
// integrated loudness to targetLUFS. Returns the gain applied in dB.
func Normalize(buf *audio.Buffer, targetLUFS float64) (float64, error) {
	current, err := measuredLUFS(buf)
	if err != nil {
		return 0, err
	}

	gainDB := targetLUFS - current
	gain := math.Pow(10, gainDB/20)

	for _, ch := range buf.Data {
		for i := range ch {
			ch[i] *= gain
		}
	}

	return gainDB, nil
}
