package loopguard

// Strictness selects how a guard treats a blocking call made on the loop
// goroutine that no allow predicate exempted.
//
// The zero value is [Strict]: a misconfigured guard fails closed rather than
// silently letting blocking calls through.
type Strictness uint8

const (
	// Strict always denies; the original is never executed.
	Strict Strictness = iota
	// StrictCore denies by default, but downgrades to a warning while the
	// process-wide relaxed-mode hook reports true.
	StrictCore
	// Lenient always warns and executes the original.
	Lenient
)

// String returns a human-readable representation of the strictness.
func (s Strictness) String() string {
	switch s {
	case Strict:
		return "Strict"
	case StrictCore:
		return "StrictCore"
	case Lenient:
		return "Lenient"
	default:
		return "Unknown"
	}
}

// Decision is the outcome of applying a guard's policy to one invocation on
// the loop goroutine.
type Decision uint8

const (
	// Deny fails the call with a [*BlockingCallError]; the original does not
	// run. Deny is the zero value so unknown strictness modes fail closed.
	Deny Decision = iota
	// Warn emits a non-fatal warning and executes the original.
	Warn
	// Proceed executes the original silently (the call was exempted).
	Proceed
)

// String returns a human-readable representation of the decision.
func (d Decision) String() string {
	switch d {
	case Proceed:
		return "Proceed"
	case Warn:
		return "Warn"
	case Deny:
		return "Deny"
	default:
		return "Unknown"
	}
}

// Decide resolves one loop-goroutine invocation. allowed reports whether the
// guard's predicate exempted the call; relaxed reports the process-wide
// relaxed-mode flag at the time of the call.
//
// Decide is pure: no I/O, no shared state, same inputs same outcome.
func (s Strictness) Decide(allowed, relaxed bool) Decision {
	if allowed {
		return Proceed
	}
	switch s {
	case Strict:
		return Deny
	case StrictCore:
		if relaxed {
			return Warn
		}
		return Deny
	case Lenient:
		return Warn
	default:
		return Deny
	}
}
