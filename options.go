// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package loopguard

import (
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/joeycumines/logiface"
)

// gatewayOptions holds configuration options for Gateway creation.
type gatewayOptions struct {
	logger        *logiface.Logger[logiface.Event]
	transport     http.RoundTripper
	sleep         func(time.Duration)
	glob          func(pattern string) ([]string, error)
	globFS        func(fsys fs.FS, pattern string) ([]string, error)
	listDir       func(name string) ([]string, error)
	scanDir       func(name string) ([]fs.DirEntry, error)
	open          func(name string) (*os.File, error)
	loader        ModuleLoader
	modules       ModuleRegistry
	identity      IDFunc
	caller        CallerFunc
	relaxed       func() bool
	prefixes      []string
	debuggerFiles []string
	loopID        uint64
	loopIDSet     bool
	harness       bool
	harnessSet    bool
	metrics       bool
}

// Option configures a Gateway instance.
type Option interface {
	applyGateway(*gatewayOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyGatewayFunc func(*gatewayOptions) error
}

func (o *optionImpl) applyGateway(opts *gatewayOptions) error {
	return o.applyGatewayFunc(opts)
}

// WithLogger sets the logger that receives advisory blocking-call warnings.
// A nil logger (the default) disables them; denied calls are reported
// through their error return either way.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithTransport sets the underlying transport for [Gateway.RoundTrip].
// Defaults to [http.DefaultTransport].
func WithTransport(transport http.RoundTripper) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.transport = transport
		return nil
	}}
}

// WithSleepFunc sets the underlying sleep primitive for [Gateway.Sleep].
// Defaults to [time.Sleep].
func WithSleepFunc(sleep func(time.Duration)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.sleep = sleep
		return nil
	}}
}

// WithGlobFunc sets the underlying pattern-expansion primitive for
// [Gateway.Glob]. Defaults to [path/filepath.Glob].
func WithGlobFunc(glob func(pattern string) ([]string, error)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.glob = glob
		return nil
	}}
}

// WithGlobFSFunc sets the underlying pattern-expansion primitive for
// [Gateway.GlobFS]. Defaults to [io/fs.Glob].
func WithGlobFSFunc(glob func(fsys fs.FS, pattern string) ([]string, error)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.globFS = glob
		return nil
	}}
}

// WithListDirFunc sets the underlying directory-listing primitive for
// [Gateway.ListDir]. The default opens the directory and reads its entry
// names in directory order.
func WithListDirFunc(listDir func(name string) ([]string, error)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.listDir = listDir
		return nil
	}}
}

// WithScanDirFunc sets the underlying directory-scanning primitive for
// [Gateway.ScanDir]. Defaults to [os.ReadDir].
func WithScanDirFunc(scanDir func(name string) ([]fs.DirEntry, error)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.scanDir = scanDir
		return nil
	}}
}

// WithOpenFunc sets the underlying file-open primitive for [Gateway.Open].
// Defaults to [os.Open].
func WithOpenFunc(open func(name string) (*os.File, error)) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.open = open
		return nil
	}}
}

// WithModuleLoader sets the loader behind [Gateway.LoadModule]. There is no
// portable default: without a loader, LoadModule fails with
// [ErrNoModuleLoader].
func WithModuleLoader(loader ModuleLoader) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.loader = loader
		return nil
	}}
}

// WithLoadedModules sets the loaded-module registry consulted by the
// already-loaded exemption on [Gateway.LoadModule]. The gateway only ever
// reads it. Without a registry the exemption never applies.
func WithLoadedModules(registry ModuleRegistry) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.modules = registry
		return nil
	}}
}

// WithIdentity sets the identity function used to distinguish the loop
// goroutine. Defaults to [GoroutineID]; pass [ThreadID] when the loop is
// pinned to an OS thread with [runtime.LockOSThread].
func WithIdentity(identity IDFunc) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.identity = identity
		return nil
	}}
}

// WithLoopID fixes the loop identity explicitly instead of capturing the
// constructing goroutine's identity. Use it when the gateway must be built
// off the loop goroutine.
func WithLoopID(id uint64) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.loopID = id
		opts.loopIDSet = true
		return nil
	}}
}

// WithRelaxedMode sets the process-wide relaxed-mode hook consulted by
// [StrictCore] guards. It is sampled on each denied-by-default call; nil
// (the default) means never relaxed. The hook must be safe for concurrent
// use and must not block.
func WithRelaxedMode(relaxed func() bool) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.relaxed = relaxed
		return nil
	}}
}

// WithAllowedPathPrefixes replaces the path prefixes exempted by the
// filesystem guards (ListDir, ScanDir, Open). The default is "/proc", the
// kernel's non-blocking process-information mount. An explicit empty set
// disables the exemption.
func WithAllowedPathPrefixes(prefixes ...string) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.prefixes = prefixes
		return nil
	}}
}

// WithDebuggerFiles sets the source files whose frames exempt [Gateway.Sleep]
// via the debugger-frame exemption, matched as path suffixes against the
// gateway caller's frame. Empty (the default) disables the exemption without
// ever walking the stack.
func WithDebuggerFiles(files ...string) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.debuggerFiles = files
		return nil
	}}
}

// WithCaller sets the caller capability used for warning attribution and the
// debugger-frame exemption. Defaults to [Caller]. The capability is invoked
// directly at fixed depths; an implementation that delegates through
// additional frames of its own must subtract them from skip.
func WithCaller(caller CallerFunc) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.caller = caller
		return nil
	}}
}

// WithTestHarness overrides test-harness detection, which otherwise uses
// [testing.Testing]. Under the harness the filesystem and dynamic-load
// guards are not installed, since test infrastructure legitimately performs
// those operations on the loop goroutine. The branch is decided once, at
// construction.
func WithTestHarness(harness bool) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.harness = harness
		opts.harnessSet = true
		return nil
	}}
}

// WithMetrics enables decision counters on the Gateway, read via
// [Gateway.Metrics]. Only loop-goroutine outcomes are counted; the off-loop
// fast path is unaffected either way.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *gatewayOptions) error {
		opts.metrics = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to gatewayOptions.
func resolveOptions(opts []Option) (*gatewayOptions, error) {
	cfg := &gatewayOptions{
		prefixes: []string{allowedPathPrefix},
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyGateway(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
