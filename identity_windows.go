//go:build windows

package loopguard

import "golang.org/x/sys/windows"

// ThreadID returns the OS thread ID of the calling thread. Use it as the
// identity (via [WithIdentity]) when the loop goroutine is pinned with
// [runtime.LockOSThread]; unlike [GoroutineID] it is only stable for the
// lifetime of the pin.
func ThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
