package loudness

import "math"

// Gating block geometry: 400 ms blocks with 75% overlap, so the hop is
// a quarter block (100 ms). At 48 kHz this is 19200 / 4800 samples.
const (
	blockDuration = 0.4
	hopFactor     = 0.25
)

// BlockCollector windows filtered samples into overlapping fixed-length
// blocks and emits one mean-square value per full block.
//
// Input shorter than one block emits zero blocks; that is the explicit
// signal for "insufficient data" and is never papered over with a
// partial-block estimate.
type BlockCollector struct {
	blockSize int
	hopSize   int

	queue  []float64
	blocks []float64
}

// NewBlockCollector creates a collector sized for the given sample
// rate.
func NewBlockCollector(sampleRate float64) *BlockCollector {
	blockSize := max(int(math.Round(blockDuration*sampleRate)), 4)

	return &BlockCollector{
		blockSize: blockSize,
		hopSize:   max(int(float64(blockSize)*hopFactor), 1),
	}
}

// BlockSize returns the block length in samples.
func (c *BlockCollector) BlockSize() int { return c.blockSize }

// HopSize returns the hop length in samples (hop = 0.25 * block).
func (c *BlockCollector) HopSize() int { return c.hopSize }

// Push appends filtered samples and emits mean-square blocks for every
// full window reached.
func (c *BlockCollector) Push(samples []float64) {
	c.queue = append(c.queue, samples...)

	for len(c.queue) >= c.blockSize {
		sum := 0.0
		for _, s := range c.queue[:c.blockSize] {
			sum += s * s
		}

		c.blocks = append(c.blocks, sum/float64(c.blockSize))
		c.queue = c.queue[c.hopSize:]
	}
}

// Blocks returns the mean-square values emitted so far. The returned
// slice is owned by the collector; callers must not retain it across
// Push or Reset.
func (c *BlockCollector) Blocks() []float64 {
	return c.blocks
}

// Reset clears the queue and the emitted blocks but preserves the
// configured block and hop sizes.
func (c *BlockCollector) Reset() {
	c.queue = nil
	c.blocks = nil
}
