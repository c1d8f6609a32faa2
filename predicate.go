package loopguard

import (
	"fmt"
	"strings"
)

// Argument names used by the gateway when mapping a guarded call's arguments
// for predicate evaluation.
const (
	// ArgPath carries the target path of a filesystem operation.
	ArgPath = `path`
	// ArgName carries the module name of a dynamic-load operation.
	ArgName = `name`
)

// Args holds one invocation's arguments, mapped to parameter names. It is
// built fresh per call, only once the call is known to be on the loop
// goroutine, and discarded as soon as the decision is made.
type Args map[string]any

// Predicate reports whether one loop-goroutine invocation is exempt from the
// guard. Predicates must be idempotent and must not perform I/O; they see
// only the mapped arguments and, where registered with a [CallerFunc], the
// already-captured call stack. A predicate that panics is treated as having
// returned false.
type Predicate func(args Args) bool

// pathArg extracts and coerces the [ArgPath] argument. Values without a
// string form, and calls with an unexpected shape, report ok false so the
// caller fails closed.
func pathArg(args Args) (string, bool) {
	switch v := args[ArgPath].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// AllowPathPrefix exempts filesystem operations whose target path begins
// with one of the given prefixes. Intended for virtual filesystems that are
// known not to block, e.g. the kernel's process-information mounts:
//
//	AllowPathPrefix("/proc")
//
// Non-string path values are coerced via [fmt.Stringer] where possible;
// values with no string form are not exempt.
func AllowPathPrefix(prefixes ...string) Predicate {
	return func(args Args) bool {
		path, ok := pathArg(args)
		if !ok {
			return false
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// ModuleRegistry exposes the process's loaded-module registry to the
// already-loaded exemption. Implementations are queried by name and never
// mutated by the guard.
type ModuleRegistry interface {
	// Lookup returns the handle registered under name, if any.
	Lookup(name string) (handle any, ok bool)
}

// ModuleMap is a map-backed [ModuleRegistry].
//
// The guard only ever reads it; if the host mutates the map concurrently it
// must supply its own synchronized [ModuleRegistry] implementation instead.
type ModuleMap map[string]any

// Lookup implements [ModuleRegistry].
func (m ModuleMap) Lookup(name string) (any, bool) {
	handle, ok := m[name]
	return handle, ok
}

// AllowLoadedModule exempts dynamic-load calls whose module name is already
// present in the registry: re-loading an already-loaded module performs no
// blocking I/O. A nil registry exempts nothing.
func AllowLoadedModule(registry ModuleRegistry) Predicate {
	return func(args Args) bool {
		if registry == nil {
			return false
		}
		name, ok := args[ArgName].(string)
		if !ok || name == "" {
			return false
		}
		_, ok = registry.Lookup(name)
		return ok
	}
}

// AllowDebuggerSleep exempts sleeps issued by an interactive debugger's
// internal machinery, recognized by the source file of the frame at a fixed
// depth above the guard: the caller of the gateway's sleep method. Files are
// matched as path suffixes. An empty file set exempts nothing and skips the
// stack walk entirely; a failed frame lookup (stack shallower than the fixed
// depth) is not exempt.
//
// The skip depth assumes the predicate runs inside [Guard.Check]; invoking
// the returned predicate directly will inspect the wrong frame.
func AllowDebuggerSleep(caller CallerFunc, files ...string) Predicate {
	return func(Args) bool {
		if caller == nil || len(files) == 0 {
			return false
		}
		frame, err := caller(predicateFrameDepth)
		if err != nil {
			return false
		}
		for _, file := range files {
			if strings.HasSuffix(frame.File, file) {
				return true
			}
		}
		return false
	}
}
