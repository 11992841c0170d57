package service

import "time"

// Clock supplies the current instant. The 7-day and 12-hour booking
// rules are evaluated against it, so tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }
