package scheduler

import (
	"context"
	"time"
)

// Clock is the wall clock and sleep primitive used by the Scheduler.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until the deadline or until ctx is done.
	SleepUntil(ctx context.Context, deadline time.Time) error
}

type systemClock struct{}

// SystemClock sleeps on a timer, never by polling.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) SleepUntil(ctx context.Context, deadline time.Time) error {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
