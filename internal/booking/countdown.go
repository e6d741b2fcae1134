package booking

import (
	"sync"
	"time"
)

// Tick is one display update of the hold countdown.
type Tick struct {
	Seat      int
	Remaining time.Duration
	Expired   bool
}

// Countdown is a display timer over a server-issued lease. It is not a
// lock: the backend stays the authority on whether the hold is live.
type Countdown struct {
	stop chan struct{}
	once sync.Once
}

// startCountdown emits a Tick on out every interval until lockedUntil,
// then calls onExpire once. Sends never block; a slow reader just misses
// intermediate ticks.
func startCountdown(
	seat int,
	lockedUntil time.Time,
	interval time.Duration,
	now func() time.Time,
	out chan<- Tick,
	onExpire func(),
) *Countdown {
	c := &Countdown{stop: make(chan struct{})}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-c.stop:
				return
			default:
			}

			remaining := lockedUntil.Sub(now())
			if remaining <= 0 {
				send(out, Tick{Seat: seat, Expired: true})
				onExpire()
				return
			}
			send(out, Tick{Seat: seat, Remaining: remaining.Truncate(time.Second)})

			select {
			case <-c.stop:
				return
			case <-t.C:
			}
		}
	}()

	return c
}

// Stop cancels the countdown without firing onExpire. Safe to call more
// than once.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}

func send(out chan<- Tick, t Tick) {
	if out == nil {
		return
	}
	select {
	case out <- t:
	default:
	}
}
