package diagnose

import (
	"context"
	"fmt"
	"sort"
)

// Event reports a test status transition. Consumed from Events();
// emission never blocks the runner, so a slow consumer may miss
// intermediate Running events but terminal results are always
// available via Results().
type Event struct {
	TestID string
	Status Status
	Result Result
}

// Runner executes registered tests sequentially in scope order and
// owns the session's results map and context.
type Runner struct {
	dc    *Context
	tests []Test

	// deviceGate is the device-scope test that must have passed before
	// quality tests may start.
	deviceGate string

	results Results
	events  chan Event
}

// RunnerOption mutates runner construction.
type RunnerOption func(*Runner)

// WithDeviceGate names the device-scope test gating the quality scope.
func WithDeviceGate(testID string) RunnerOption {
	return func(r *Runner) {
		r.deviceGate = testID
	}
}

// NewRunner creates a runner over the given session context.
func NewRunner(dc *Context, opts ...RunnerOption) *Runner {
	r := &Runner{
		dc:      dc,
		results: make(Results),
		events:  make(chan Event, 64),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Register adds a test. Duplicate IDs are rejected.
func (r *Runner) Register(t Test) error {
	for _, existing := range r.tests {
		if existing.ID() == t.ID() {
			return fmt.Errorf("diagnose: duplicate test id %q", t.ID())
		}
	}

	r.tests = append(r.tests, t)

	return nil
}

// Context returns the session context owned by this runner.
func (r *Runner) Context() *Context { return r.dc }

// Events returns the status transition stream.
func (r *Runner) Events() <-chan Event { return r.events }

// Results returns a snapshot of all results so far.
func (r *Runner) Results() Results { return r.results.clone() }

// Run executes every test up to and including the device scope.
// Quality tests never auto-start; trigger them via RunQuality.
func (r *Runner) Run(ctx context.Context) error {
	return r.runScopes(ctx, ScopePrePermission, ScopeDevice)
}

// RunQuality executes the quality-scope tests. The device gate test,
// when configured, must have passed first.
func (r *Runner) RunQuality(ctx context.Context) error {
	if r.deviceGate != "" && !r.results.Passed(r.deviceGate) {
		return fmt.Errorf("diagnose: device gate %q has not passed", r.deviceGate)
	}

	return r.runScopes(ctx, ScopeQuality, ScopeQuality)
}

// RerunDevice re-executes the device and quality scopes after a source
// change. Pre-permission and permission results are preserved. The
// session context is torn down first so the previous source's
// resources are released before the new one is acquired.
func (r *Runner) RerunDevice(ctx context.Context) error {
	if err := r.dc.Teardown(); err != nil {
		return fmt.Errorf("diagnose: teardown before rerun: %w", err)
	}

	for _, t := range r.tests {
		if t.Scope() >= ScopeDevice {
			delete(r.results, t.ID())
		}
	}

	if err := r.runScopes(ctx, ScopeDevice, ScopeDevice); err != nil {
		return err
	}

	return r.RunQuality(ctx)
}

func (r *Runner) runScopes(ctx context.Context, from, to Scope) error {
	ordered := make([]Test, len(r.tests))
	copy(ordered, r.tests)

	// Stable: registration order decides within a scope.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Scope() < ordered[j].Scope()
	})

	for _, t := range ordered {
		if t.Scope() < from || t.Scope() > to {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		r.runOne(ctx, t)
	}

	return nil
}

func (r *Runner) runOne(ctx context.Context, t Test) {
	id := t.ID()

	for _, req := range t.Requires() {
		if !r.results.Passed(req) {
			r.finish(id, Result{
				Status:  StatusSkip,
				Message: fmt.Sprintf("prerequisite %q did not pass", req),
			})

			return
		}
	}

	if !t.CanRun(r.dc, r.results.clone()) {
		r.finish(id, Result{Status: StatusSkip, Message: "not applicable"})

		return
	}

	r.emit(Event{TestID: id, Status: StatusRunning})

	r.finish(id, r.safeRun(ctx, t))
}

// safeRun converts a panicking test into a Fail result; raw internal
// errors never reach report consumers.
func (r *Runner) safeRun(ctx context.Context, t Test) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Fail(
				fmt.Sprintf("internal error: %v", rec),
				"re-run the diagnostics; report this if it persists",
			)
		}
	}()

	res = t.Run(ctx, r.dc)
	if !res.Status.Terminal() {
		res = Fail(
			fmt.Sprintf("test %q returned non-terminal status %v", t.ID(), res.Status),
			"re-run the diagnostics; report this if it persists",
		)
	}

	return res
}

func (r *Runner) finish(id string, res Result) {
	r.results[id] = res
	r.emit(Event{TestID: id, Status: res.Status, Result: res})
}

func (r *Runner) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// Overall aggregates terminal results: Fail if any required test
// failed, else Warn if any warned, else Pass. Skipped and optional
// tests do not fail the verdict.
func (r *Runner) Overall() Status {
	overall := StatusPass

	for _, t := range r.tests {
		res, ok := r.results[t.ID()]
		if !ok {
			continue
		}

		switch res.Status {
		case StatusFail:
			if opt, isOpt := t.(OptionalTest); isOpt && opt.Optional() {
				if overall == StatusPass {
					overall = StatusWarn
				}

				continue
			}

			return StatusFail
		case StatusWarn:
			overall = StatusWarn
		}
	}

	return overall
}
