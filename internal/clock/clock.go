package clock

import (
	"sync/atomic"
	"time"
)

// Clock abstracts the current instant so time-dependent behavior can be
// tested without real delay.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock. Always returns UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Adjustable wraps another Clock and shifts every reading by a
// cumulative offset. The offset is purely additive and never reset;
// mutation is atomic with respect to concurrent reads.
type Adjustable struct {
	base   Clock
	offset atomic.Int64 // nanoseconds
}

func NewAdjustable(base Clock) *Adjustable {
	return &Adjustable{base: base}
}

func (a *Adjustable) Now() time.Time {
	return a.base.Now().Add(time.Duration(a.offset.Load()))
}

// Advance shifts all subsequent Now results forward by d.
func (a *Adjustable) Advance(d time.Duration) {
	a.offset.Add(int64(d))
}
