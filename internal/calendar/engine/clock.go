package engine

import "time"

// Clock abstracts time for the interaction state machine so that the
// click-vs-drag threshold is testable without real timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
