//go:build !linux && !windows

package loopguard

// ThreadID falls back to [GoroutineID] on platforms without a cheap thread
// ID syscall. The guard contract only needs identity values to be stable and
// comparable, which the goroutine ID satisfies so long as the loop goroutine
// stays pinned.
func ThreadID() uint64 {
	return GoroutineID()
}
