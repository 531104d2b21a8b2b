package diagnose

// Scope orders tests by the stage they belong to. Lower scopes run
// first; a scope never starts before the previous one finished.
type Scope int

const (
	ScopePrePermission Scope = iota
	ScopePermission
	ScopeDevice
	ScopeQuality
)

func (s Scope) String() string {
	switch s {
	case ScopePrePermission:
		return "pre-permission"
	case ScopePermission:
		return "permission"
	case ScopeDevice:
		return "device"
	case ScopeQuality:
		return "quality"
	default:
		return "unknown"
	}
}

// Status is the per-test state machine: Pending -> Running -> one of
// the terminal states. Skip is terminal; a skipped test is never
// retried within the same pass.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusPass
	StatusWarn
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	case StatusSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusPass, StatusWarn, StatusFail, StatusSkip:
		return true
	default:
		return false
	}
}
