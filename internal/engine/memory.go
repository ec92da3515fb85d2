package engine

import "runtime"

// MemoryWatcher tells the coordinator how many workers should stay
// active. Implementations must be safe for periodic calls from the
// pool's monitor goroutine.
type MemoryWatcher interface {
	// AdjustWorkers receives the current worker target and returns the
	// desired one. Returning a smaller value sheds workers after their
	// in-flight file completes; it never aborts a parse.
	AdjustWorkers(current int) int
}

// heapWatcher is the default pressure signal: shrink the pool while the
// live heap exceeds a soft limit, grow back toward the original budget
// once it recedes.
type heapWatcher struct {
	softLimit uint64
}

const defaultSoftLimitBytes = 1 << 30 // 1 GiB live heap

func newHeapWatcher() *heapWatcher {
	return &heapWatcher{softLimit: defaultSoftLimitBytes}
}

func (w *heapWatcher) AdjustWorkers(current int) int {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc > w.softLimit {
		return current / 2
	}
	return current + 1
}

func defaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}
