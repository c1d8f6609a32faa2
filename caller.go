package loopguard

import "runtime"

// Frame describes the code location of a single call-stack frame.
type Frame struct {
	// File is the full path of the source file.
	File string
	// Line is the line number within File.
	Line int
}

// CallerFunc reports the frame at the given depth above its invocation site:
// skip 0 is the caller of the CallerFunc itself, skip 1 is that function's
// caller, and so on. It fails (rather than returning a zero Frame) when the
// stack is shallower than the requested depth.
//
// This is deliberately a narrow capability, not a general stack facility.
// Frame lookup walks the call stack and is orders of magnitude costlier than
// an identity comparison, so guards invoke it only after the loop-goroutine
// check has confirmed the cost is warranted, never on the off-loop fast path.
type CallerFunc func(skip int) (Frame, error)

// Caller is the default [CallerFunc], backed by [runtime.Caller].
func Caller(skip int) (Frame, error) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{}, ErrNoCallerFrame
	}
	return Frame{File: file, Line: line}, nil
}
