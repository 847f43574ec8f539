package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the only time source the control loop sees: a monotonic
// millisecond counter that wraps at 2^32, plus a way to yield the CPU.
type Clock interface {
	Millis() uint32
	Sleep(d time.Duration)
}

// Elapsed returns now - since in milliseconds. Unsigned modular subtraction
// means the result stays correct across counter wraparound.
func Elapsed(now, since uint32) uint32 {
	return now - since
}

type systemClock struct {
	inner clockwork.Clock
	epoch time.Time
}

// NewSystem returns a Clock counting milliseconds since boot (construction).
func NewSystem() Clock {
	inner := clockwork.NewRealClock()
	return &systemClock{inner: inner, epoch: inner.Now()}
}

func (c *systemClock) Millis() uint32 {
	return uint32(c.inner.Since(c.epoch).Milliseconds())
}

func (c *systemClock) Sleep(d time.Duration) {
	c.inner.Sleep(d)
}

// Fake is a test clock. Sleep advances it immediately so single-threaded
// tests can drive polling loops deterministically, and the start value can
// be placed just below the wrap point.
type Fake struct {
	now uint32
}

func NewFake(startMillis uint32) *Fake {
	return &Fake{now: startMillis}
}

func (f *Fake) Millis() uint32 {
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.Advance(uint32(d.Milliseconds()))
}

func (f *Fake) Advance(ms uint32) {
	f.now += ms
}
