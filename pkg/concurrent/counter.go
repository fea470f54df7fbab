package concurrent

import (
	"sync/atomic"
)

// Counter is a lock-free counter using atomic operations
type Counter struct {
	value int64
}

// NewCounter creates a new lock-free counter
func NewCounter() *Counter {
	return &Counter{value: 0}
}

// Inc increments the counter by 1 and returns the new value
func (c *Counter) Inc() int64 {
	return atomic.AddInt64(&c.value, 1)
}

// Add increments the counter by delta and returns the new value
func (c *Counter) Add(delta int64) int64 {
	return atomic.AddInt64(&c.value, delta)
}

// Dec decrements the counter by 1 and returns the new value
func (c *Counter) Dec() int64 {
	return atomic.AddInt64(&c.value, -1)
}

// Load returns the current value
func (c *Counter) Load() int64 {
	return atomic.LoadInt64(&c.value)
}

// Store sets the counter to a specific value
func (c *Counter) Store(value int64) {
	atomic.StoreInt64(&c.value, value)
}

// CompareAndSwap performs a CAS operation
// Returns true if the swap was successful
func (c *Counter) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&c.value, old, new)
}

// Swap atomically stores new value and returns the old value
func (c *Counter) Swap(new int64) int64 {
	return atomic.SwapInt64(&c.value, new)
}

// Reset sets the counter to 0 and returns the previous value
func (c *Counter) Reset() int64 {
	return atomic.SwapInt64(&c.value, 0)
}
