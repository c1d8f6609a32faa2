package loopguard

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockingCall matches any [*BlockingCallError] via [errors.Is].
	ErrBlockingCall = errors.New(`loopguard: blocking call inside the event loop`)

	// ErrNoModuleLoader is returned by [Gateway.LoadModule] when no loader
	// was configured via [WithModuleLoader].
	ErrNoModuleLoader = errors.New(`loopguard: no module loader configured`)

	// ErrNoCallerFrame is returned by the default caller capability when the
	// call stack is shallower than the requested depth.
	ErrNoCallerFrame = errors.New(`loopguard: no caller frame at requested depth`)

	// ErrNilPrimitive is returned by [New] when a guarded primitive resolves
	// to nil. A missing guard is a silent safety regression, so construction
	// fails loudly instead of skipping the registration.
	ErrNilPrimitive = errors.New(`loopguard: nil primitive`)
)

// BlockingCallError is the failure returned when a strict-mode guard denies a
// call on the loop goroutine. It names the guarded operation; the original
// primitive was not executed.
type BlockingCallError struct {
	// Call is the guarded operation, e.g. "sleep" or "round-trip".
	Call string
}

// Error implements the error interface.
func (e *BlockingCallError) Error() string {
	if e.Call == "" {
		return ErrBlockingCall.Error()
	}
	return fmt.Sprintf(`loopguard: blocking call to %s inside the event loop`, e.Call)
}

// Is reports a match for [ErrBlockingCall], for use with [errors.Is].
func (e *BlockingCallError) Is(target error) bool {
	return target == ErrBlockingCall
}
