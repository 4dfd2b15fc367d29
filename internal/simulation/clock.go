package simulation

import (
	"sync"
	"time"
)

// Clock supplies both the monotonic time used for simulation deltas and the wall-clock epoch.
// time.Time from time.Now carries a monotonic reading, so Sub is safe against wall-clock jumps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must not block: it may be called from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler backs each periodic task with its own goroutine and time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
