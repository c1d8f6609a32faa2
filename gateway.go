package loopguard

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Operation names, as reported by [BlockingCallError.Call] and the `call`
// field of advisory warnings.
const (
	CallRoundTrip  = `round-trip`
	CallSleep      = `sleep`
	CallGlob       = `glob`
	CallGlobFS     = `glob-fs`
	CallListDir    = `listdir`
	CallScanDir    = `scandir`
	CallOpen       = `open`
	CallLoadModule = `load-module`
)

// allowedPathPrefix is the default privileged-path exemption: reads under
// the kernel's process-information mount do not block.
const allowedPathPrefix = `/proc`

// ModuleLoader loads a module by name, returning an opaque handle. It is the
// primitive behind [Gateway.LoadModule]; caching already-loaded modules is
// the loader's concern, the guard only consults the loaded-module registry
// to decide whether the call is exempt.
type ModuleLoader func(name string) (any, error)

// Gateway routes blocking operations through their guards. It is the
// injected alternative to patching process-wide references: hosts hold a
// single Gateway and call (or hand out) its methods in place of the raw
// primitives. Construct with [New]; a Gateway is immutable and safe for
// concurrent use.
//
// Gateway satisfies [http.RoundTripper] and can be used directly as an
// [http.Client] transport.
type Gateway struct {
	transport http.RoundTripper
	sleepFn   func(time.Duration)
	globFn    func(pattern string) ([]string, error)
	globFSFn  func(fsys fs.FS, pattern string) ([]string, error)
	listDirFn func(name string) ([]string, error)
	scanDirFn func(name string) ([]fs.DirEntry, error)
	openFn    func(name string) (*os.File, error)
	loader    ModuleLoader

	core *guardCore

	roundTripGuard *Guard
	sleepGuard     *Guard
	globGuard      *Guard
	globFSGuard    *Guard
	listDirGuard   *Guard
	scanDirGuard   *Guard
	openGuard      *Guard
	loadGuard      *Guard
}

// New builds a Gateway around the configured primitives, capturing the
// calling goroutine's identity as the loop identity unless [WithLoopID]
// says otherwise.
//
// The registration set is fixed: round trips and sleeps are [Strict], the
// filesystem and dynamic-load operations are [Lenient]. Sleep carries the
// debugger-frame exemption, the path operations the privileged-path
// exemption, and module loading the already-loaded exemption. Under the
// test harness (see [WithTestHarness]) the ListDir, ScanDir, Open, and
// LoadModule guards are not installed, because test infrastructure
// legitimately performs those operations on the loop goroutine; the glob,
// sleep, and round-trip guards stay installed regardless.
//
// Any primitive that resolves to nil is an error, never a silent skip: a
// missing guard is a safety regression.
func New(opts ...Option) (*Gateway, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	identity := cfg.identity
	if identity == nil {
		identity = GoroutineID
	}
	caller := cfg.caller
	if caller == nil {
		caller = Caller
	}
	loopID := cfg.loopID
	if !cfg.loopIDSet {
		loopID = identity()
	}
	harness := cfg.harness
	if !cfg.harnessSet {
		harness = testing.Testing()
	}

	x := &Gateway{
		transport: cfg.transport,
		sleepFn:   cfg.sleep,
		globFn:    cfg.glob,
		globFSFn:  cfg.globFS,
		listDirFn: cfg.listDir,
		scanDirFn: cfg.scanDir,
		openFn:    cfg.open,
		loader:    cfg.loader,
		core: &guardCore{
			identity: identity,
			relaxed:  cfg.relaxed,
			logger:   cfg.logger,
			caller:   caller,
			loopID:   loopID,
		},
	}
	if cfg.metrics {
		x.core.metrics = &Metrics{}
	}

	if x.transport == nil {
		x.transport = http.DefaultTransport
	}
	if x.sleepFn == nil {
		x.sleepFn = time.Sleep
	}
	if x.globFn == nil {
		x.globFn = filepath.Glob
	}
	if x.globFSFn == nil {
		x.globFSFn = fs.Glob
	}
	if x.listDirFn == nil {
		x.listDirFn = listDir
	}
	if x.scanDirFn == nil {
		x.scanDirFn = os.ReadDir
	}
	if x.openFn == nil {
		x.openFn = os.Open
	}

	// http.DefaultTransport is a mutable package variable; anything nil
	// here means the expected primitive no longer exists.
	switch {
	case x.transport == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallRoundTrip)
	case x.sleepFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallSleep)
	case x.globFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallGlob)
	case x.globFSFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallGlobFS)
	case x.listDirFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallListDir)
	case x.scanDirFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallScanDir)
	case x.openFn == nil:
		return nil, fmt.Errorf(`%w: %s`, ErrNilPrimitive, CallOpen)
	}

	var sleepAllow Predicate
	if len(cfg.debuggerFiles) > 0 {
		sleepAllow = AllowDebuggerSleep(caller, cfg.debuggerFiles...)
	}

	x.roundTripGuard = x.Guard(CallRoundTrip, Strict, nil)
	x.sleepGuard = x.Guard(CallSleep, Strict, sleepAllow)
	x.globGuard = x.Guard(CallGlob, Lenient, nil)
	x.globFSGuard = x.Guard(CallGlobFS, Lenient, nil)

	if !harness {
		var pathAllow Predicate
		if len(cfg.prefixes) > 0 {
			pathAllow = AllowPathPrefix(cfg.prefixes...)
		}
		var loadAllow Predicate
		if cfg.modules != nil {
			loadAllow = AllowLoadedModule(cfg.modules)
		}
		x.listDirGuard = x.Guard(CallListDir, Lenient, pathAllow)
		x.scanDirGuard = x.Guard(CallScanDir, Lenient, pathAllow)
		x.openGuard = x.Guard(CallOpen, Lenient, pathAllow)
		x.loadGuard = x.Guard(CallLoadModule, Lenient, loadAllow)
	}

	return x, nil
}

// Guard creates an additional guard sharing this gateway's loop identity,
// logger, relaxed-mode hook, and metrics, for host-defined operations that
// the fixed registration set does not cover. Combine with [Wrap] or call
// [Guard.Check] from a hand-written wrapper.
func (x *Gateway) Guard(name string, strictness Strictness, allow Predicate) *Guard {
	return &Guard{
		core:       x.core,
		allow:      allow,
		name:       name,
		strictness: strictness,
	}
}

// Metrics returns a snapshot of the decision counters. It is zero unless
// [WithMetrics] enabled collection.
func (x *Gateway) Metrics() MetricsSnapshot {
	return x.core.metrics.Snapshot()
}

// RoundTrip issues req through the underlying transport. On the loop
// goroutine it fails with a [*BlockingCallError] before any I/O happens;
// everywhere else it is a pass-through.
func (x *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := x.roundTripGuard.Check(nil); err != nil {
		return nil, err
	}
	return x.transport.RoundTrip(req)
}

// Sleep blocks the calling goroutine for the duration. On the loop
// goroutine it fails with a [*BlockingCallError] without sleeping, unless
// the debugger-frame exemption applies.
func (x *Gateway) Sleep(d time.Duration) error {
	if err := x.sleepGuard.Check(nil); err != nil {
		return err
	}
	x.sleepFn(d)
	return nil
}

// Glob expands pattern against the host filesystem. Loop-goroutine calls
// warn and proceed.
func (x *Gateway) Glob(pattern string) ([]string, error) {
	if err := x.globGuard.Check(nil); err != nil {
		return nil, err
	}
	return x.globFn(pattern)
}

// GlobFS expands pattern against fsys. Loop-goroutine calls warn and
// proceed.
func (x *Gateway) GlobFS(fsys fs.FS, pattern string) ([]string, error) {
	if err := x.globFSGuard.Check(nil); err != nil {
		return nil, err
	}
	return x.globFSFn(fsys, pattern)
}

// ListDir returns the entry names of the directory, unsorted. Loop-goroutine
// calls warn and proceed, except under an allowed path prefix.
func (x *Gateway) ListDir(name string) ([]string, error) {
	if err := x.listDirGuard.CheckArg(ArgPath, name); err != nil {
		return nil, err
	}
	return x.listDirFn(name)
}

// ScanDir returns the directory's entries. Loop-goroutine calls warn and
// proceed, except under an allowed path prefix.
func (x *Gateway) ScanDir(name string) ([]fs.DirEntry, error) {
	if err := x.scanDirGuard.CheckArg(ArgPath, name); err != nil {
		return nil, err
	}
	return x.scanDirFn(name)
}

// Open opens the named file for reading. Loop-goroutine calls warn and
// proceed, except under an allowed path prefix.
func (x *Gateway) Open(name string) (*os.File, error) {
	if err := x.openGuard.CheckArg(ArgPath, name); err != nil {
		return nil, err
	}
	return x.openFn(name)
}

// LoadModule loads a module through the configured [ModuleLoader].
// Loop-goroutine calls warn and proceed, except when the loaded-module
// registry already holds the name. Fails with [ErrNoModuleLoader] when no
// loader was configured.
func (x *Gateway) LoadModule(name string) (any, error) {
	if err := x.loadGuard.CheckArg(ArgName, name); err != nil {
		return nil, err
	}
	if x.loader == nil {
		return nil, ErrNoModuleLoader
	}
	return x.loader(name)
}

// listDir reads a directory's entry names in directory order.
func listDir(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}
