package host

import (
	"sync"
	"time"
)

// Clock supplies the block timestamp, in milliseconds, stamped on each action.
type Clock interface {
	NowMillis() uint64
}

// SystemClock reads wall time but never goes backwards: a wall-clock step
// back repeats the last value instead.
type SystemClock struct {
	mu   sync.Mutex
	last uint64
}

func (c *SystemClock) NowMillis() uint64 {
	now := uint64(time.Now().UnixMilli())

	c.mu.Lock()
	defer c.mu.Unlock()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint64

func (f ClockFunc) NowMillis() uint64 { return f() }
