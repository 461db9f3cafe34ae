package simhost

import "sync/atomic"

// Clock counts processing cycles.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// so observers may read it while the loop advances it.
type Clock struct {
	cycle atomic.Uint64
}

// Next advances to the next cycle and returns its number. The first cycle is 1.
func (c *Clock) Next() uint64 {
	return c.cycle.Add(1)
}

// Current returns the number of the last cycle started.
func (c *Clock) Current() uint64 {
	return c.cycle.Load()
}
