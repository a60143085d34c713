package flow

// State is a step of a single flow invocation.
//
//	Pending -> Validating -> ValidationFailed
//	                      -> Executing -> ExecutionFailed
//	                                   -> Validated
type State int

const (
	Pending State = iota
	Validating
	ValidationFailed
	Executing
	ExecutionFailed
	Validated
)

var stateNames = [...]string{
	Pending:          "pending",
	Validating:       "validating",
	ValidationFailed: "validation_failed",
	Executing:        "executing",
	ExecutionFailed:  "execution_failed",
	Validated:        "validated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == ValidationFailed || s == ExecutionFailed || s == Validated
}

// ReadinessStatus is the outcome of generator initialization.
type ReadinessStatus int

const (
	Ready ReadinessStatus = iota
	MisconfiguredMissingCredential
)

func (s ReadinessStatus) String() string {
	switch s {
	case Ready:
		return "ready"
	case MisconfiguredMissingCredential:
		return "misconfigured: missing credential"
	default:
		return "unknown"
	}
}

// Readiness is the typed result of initializing the generator.
type Readiness struct {
	Status ReadinessStatus
	Detail string
}

// Ready reports whether flows can reach the generator.
func (r Readiness) Ready() bool {
	return r.Status == Ready
}
