package scan

import "sync/atomic"

// Incrementer is the only capability workers get on the detection count.
type Incrementer interface {
	Inc()
}

// Counter is the running count of flagged files. The zero value is ready to use.
type Counter struct {
	n atomic.Uint64
}

// Inc adds one to the count. It is safe to call from any goroutine.
func (c *Counter) Inc() {
	c.n.Add(1)
}

// Load returns the current count.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}
