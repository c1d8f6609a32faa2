// Package loopguard detects and blocks accidental blocking calls made on the
// goroutine that runs a single-threaded cooperative event loop.
//
// # Architecture
//
// The package is built around two pieces. A [Guard] applies the blocking-call
// policy for one operation: calls from any goroutine other than the loop
// goroutine delegate straight through, while calls on the loop goroutine are
// checked against an optional allow predicate and then resolved by the
// guard's [Strictness] into one of proceed, warn, or deny. A [Gateway] bundles
// a fixed set of guards around the common offenders (network round trips,
// sleeps, filesystem access, dynamic module loading) behind ordinary method
// calls, so the guarded primitives are injected at the call boundary rather
// than patched in place.
//
// # Decision Model
//
// Every guarded invocation resolves through [Strictness.Decide], a pure
// function over (allowed, relaxed):
//   - [Strict]: deny on the loop goroutine, no exceptions beyond the
//     predicate.
//   - [StrictCore]: deny by default, downgraded to a warning when the
//     gateway's relaxed-mode hook reports true.
//   - [Lenient]: warn and execute; used where hard-failing would break
//     legitimate startup-time usage.
//
// A denied call returns a [*BlockingCallError] naming the operation and the
// original primitive never runs. A warned call emits a single structured
// warning via the configured [github.com/joeycumines/logiface] logger, then
// executes the original unchanged.
//
// # Thread Safety
//
// Guards are immutable after [New] and are read concurrently without locks.
// The off-loop fast path is a single identity comparison; no allocation, no
// logging, no counters. The guard itself never blocks and never spawns
// goroutines.
//
// # Usage
//
//	gw, err := loopguard.New(
//	    loopguard.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := &http.Client{Transport: gw}
//
// Construct the gateway on the loop goroutine (or pass the loop's identity
// via [WithLoopID]) before any loop activity begins. Constructing a second
// gateway over the methods of an existing one double-wraps the guards and is
// not supported.
package loopguard
