package mastering

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/voicecheck/audio"
	"github.com/cwbudde/voicecheck/measure/level"
)

// minBufferDuration is the shortest recording the chain accepts; a
// gated loudness measurement needs at least a couple of blocks to mean
// anything.
const minBufferDuration = time.Second

// Result records the before/after state of one mastering run.
type Result struct {
	// Buffer is the processed recording; the input is never mutated.
	Buffer *audio.Buffer

	InputLUFS  float64
	OutputLUFS float64

	// True-peak readings in linear amplitude.
	InputPeak  float64
	OutputPeak float64

	// GainAppliedDB is the static normalization gain. Expansion and
	// limiting apply additional time-varying gain on top.
	GainAppliedDB float64
}

// PipelineConfig defines the chain's targets.
type PipelineConfig struct {
	TargetLUFS float64
	CeilingDB  float64
}

// PipelineOption mutates a PipelineConfig.
type PipelineOption func(*PipelineConfig)

// DefaultPipelineConfig targets -14 LUFS with a -1 dBTP ceiling.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TargetLUFS: DefaultTargetLUFS,
		CeilingDB:  defaultLimiterCeilingDB,
	}
}

// WithTargetLUFS sets the normalization target.
func WithTargetLUFS(lufs float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if lufs < 0 && isFinite(lufs) {
			cfg.TargetLUFS = lufs
		}
	}
}

// WithCeiling sets the limiter ceiling in dBTP.
func WithCeiling(dB float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if dB <= 0 && isFinite(dB) {
			cfg.CeilingDB = dB
		}
	}
}

// ApplyPipelineOptions applies zero or more options to the defaults.
func ApplyPipelineOptions(opts ...PipelineOption) PipelineConfig {
	cfg := DefaultPipelineConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Pipeline runs the mastering chain. Runs for distinct recordings are
// independent; a second run for the same recording key is rejected
// with ErrInProgress while the first is active.
type Pipeline struct {
	cfg PipelineConfig

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewPipeline creates a pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	return &Pipeline{
		cfg:      ApplyPipelineOptions(opts...),
		inFlight: make(map[string]struct{}),
	}
}

// ProcessForStreaming masters one recording: expansion, normalization
// to the target loudness, true-peak limiting. key identifies the
// recording for concurrency control.
func (p *Pipeline) ProcessForStreaming(ctx context.Context, key string, in *audio.Buffer) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	if in.Duration() < minBufferDuration {
		return Result{}, fmt.Errorf("%w: %s", ErrBufferTooShort, in.Duration())
	}

	if err := p.acquire(key); err != nil {
		return Result{}, err
	}
	defer p.release(key)

	res := Result{Buffer: in.Clone()}

	// Both precondition measurements happen before any transform.
	inputLUFS, err := measuredLUFS(res.Buffer)
	if err != nil {
		return Result{}, err
	}

	res.InputLUFS = inputLUFS
	res.InputPeak = level.TruePeak(res.Buffer)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	expander, err := NewExpander(res.Buffer.SampleRate)
	if err != nil {
		return Result{}, err
	}

	expander.ProcessInPlace(res.Buffer)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Loudness shifts during expansion, so the gain is computed from a
	// fresh measurement.
	gainDB, err := Normalize(res.Buffer, p.cfg.TargetLUFS)
	if err != nil {
		return Result{}, err
	}

	res.GainAppliedDB = gainDB

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	limiter, err := NewLimiter(res.Buffer.SampleRate)
	if err != nil {
		return Result{}, err
	}

	if err := limiter.SetCeiling(p.cfg.CeilingDB); err != nil {
		return Result{}, err
	}

	limiter.ProcessInPlace(res.Buffer)

	outputLUFS, err := measuredLUFS(res.Buffer)
	if err != nil {
		return Result{}, err
	}

	res.OutputLUFS = outputLUFS
	res.OutputPeak = level.TruePeak(res.Buffer)

	return res, nil
}

func (p *Pipeline) acquire(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.inFlight[key]; busy {
		return ErrInProgress
	}

	p.inFlight[key] = struct{}{}

	return nil
}

func (p *Pipeline) release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.inFlight, key)
}
