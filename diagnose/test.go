package diagnose

import "context"

// Test is one registered diagnostic. Implementations must be safe to
// run more than once; device and quality tests are re-executed on
// source changes.
type Test interface {
	// ID uniquely names the test within a runner.
	ID() string

	// Scope determines execution order.
	Scope() Scope

	// Requires lists test IDs that must have passed before this test
	// may run. A prerequisite that did not pass resolves this test to
	// Skip without invoking Run.
	Requires() []string

	// CanRun performs a cheap applicability check, e.g. "is the source
	// stereo". Returning false resolves the test to Skip.
	CanRun(dc *Context, results Results) bool

	// Run executes the test. It must return a Result rather than
	// panic; the runner converts panics into Fail results as a last
	// resort.
	Run(ctx context.Context, dc *Context) Result
}

// OptionalTest marks a test whose failure should not fail the overall
// verdict. Tests not implementing this are required.
type OptionalTest interface {
	Optional() bool
}

// Result is the terminal outcome of one test run. Fail and Warn
// results must carry a Message and an actionable Fix.
type Result struct {
	Status  Status
	Message string
	Details map[string]any
	Fix     string
}

// Pass returns a plain passing result.
func Pass(message string) Result {
	return Result{Status: StatusPass, Message: message}
}

// Warn returns a warning result with remediation advice.
func Warn(message, fix string) Result {
	return Result{Status: StatusWarn, Message: message, Fix: fix}
}

// Fail returns a failing result with remediation advice.
func Fail(message, fix string) Result {
	return Result{Status: StatusFail, Message: message, Fix: fix}
}

// WithDetail attaches a named detail value and returns the result.
func (r Result) WithDetail(key string, value any) Result {
	if r.Details == nil {
		r.Details = make(map[string]any)
	}

	r.Details[key] = value

	return r
}

// Results maps test IDs to their latest result. Owned by one runner;
// callers receive copies.
type Results map[string]Result

// Passed reports whether the named test has a pass result.
func (r Results) Passed(id string) bool {
	return r[id].Status == StatusPass
}

func (r Results) clone() Results {
	out := make(Results, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}
