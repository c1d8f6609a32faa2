package loopguard

import "runtime"

// IDFunc supplies the identity of the calling execution context. The same
// function is used once at construction to capture the loop identity and on
// every guarded call to compare against it, so it must be cheap and must
// return the same value for the same goroutine (or thread) every time.
type IDFunc func() uint64

// GoroutineID returns the current goroutine's ID, parsed from the header of
// its [runtime.Stack] dump. This is the default identity used by [New]:
// event loops in Go are typically a dedicated goroutine rather than a locked
// OS thread.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header shape: "goroutine 123 [running]:"
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
