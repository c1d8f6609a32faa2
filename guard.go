package loopguard

import (
	"github.com/joeycumines/logiface"
)

// Frame depths from the caller capability's invocation site up to the code
// that called the guarded operation. The chain between them is fixed:
//
//	frame 0 is decide
//	frame 1 is Check or CheckArg
//	frame 2 is the gateway method (or equivalent wrapper)
//	frame 3 is the offender
//
// Predicates run two frames deeper (allowed, then the predicate itself).
const (
	warnFrameDepth      = 3
	predicateFrameDepth = 5
)

// guardCore is the per-gateway state shared by all of its guards: the loop
// identity and the collaborators the decision needs. Immutable after New.
type guardCore struct {
	identity IDFunc
	relaxed  func() bool
	logger   *logiface.Logger[logiface.Event]
	caller   CallerFunc
	metrics  *Metrics
	loopID   uint64
}

func (c *guardCore) onLoop() bool {
	return c.identity() == c.loopID
}

// Guard enforces the blocking-call policy for one operation. Guards are
// created by [New] (or [Gateway.Guard] for host-defined operations), are
// immutable, and are safe for concurrent use. A nil Guard checks nothing:
// every call delegates, which is how the gateway represents registrations
// skipped under the test harness.
type Guard struct {
	core       *guardCore
	allow      Predicate
	name       string
	strictness Strictness
}

// Name returns the guarded operation's name, as used in errors and warnings.
func (g *Guard) Name() string {
	if g == nil {
		return ""
	}
	return g.name
}

// Strictness returns the guard's strictness mode.
func (g *Guard) Strictness() Strictness {
	if g == nil {
		return Strict
	}
	return g.strictness
}

// Check applies the guard decision for one invocation. Off the loop
// goroutine it returns nil immediately; the cost is a single identity
// comparison. On the loop goroutine it evaluates the allow predicate (if
// any) against args and resolves the strictness mode: nil for proceed or
// warn, a [*BlockingCallError] for deny. The caller executes the original
// primitive exactly when Check returns nil.
//
// args may be nil when the guard's predicate does not inspect arguments.
// Check is intended to run one frame below the guarded call site (inside a
// gateway method or wrapper); the advisory warning attributes the call to
// the frame at that fixed depth.
func (g *Guard) Check(args Args) error {
	if g == nil || !g.core.onLoop() {
		return nil
	}
	return g.decide(args)
}

// CheckArg is Check for operations whose predicate inspects a single string
// argument, mapped as Args{key: value}. Unlike building the map at the call
// site, the mapping happens after the loop-goroutine comparison, keeping the
// off-loop path allocation free.
func (g *Guard) CheckArg(key, value string) error {
	if g == nil || !g.core.onLoop() {
		return nil
	}
	return g.decide(Args{key: value})
}

// decide resolves a loop-goroutine invocation. Kept as the single frame
// between Check/CheckArg and the predicate so the depths above hold.
func (g *Guard) decide(args Args) error {
	allowed := g.allow != nil && g.allowed(args)
	var relaxed bool
	if !allowed && g.strictness == StrictCore && g.core.relaxed != nil {
		relaxed = g.core.relaxed()
	}
	switch g.strictness.Decide(allowed, relaxed) {
	case Proceed:
		g.core.metrics.incExempted()
		return nil
	case Warn:
		g.core.metrics.incWarned()
		if b := g.core.logger.Warning(); b.Enabled() {
			b = b.Str(`call`, g.name)
			if frame, err := g.core.caller(warnFrameDepth); err == nil {
				b = b.Str(`file`, frame.File).Int(`line`, frame.Line)
			}
			b.Log(`blocking call inside the event loop`)
		}
		return nil
	default:
		g.core.metrics.incDenied()
		return &BlockingCallError{Call: g.name}
	}
}

// allowed evaluates the predicate, treating a panic (bad argument shape,
// faulty predicate) as not exempt.
func (g *Guard) allowed(args Args) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return g.allow(args)
}
