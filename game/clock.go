package game

import (
	"sync"
	"time"
)

// TimeoutFunc is called when the player on turn runs out of time. The
// callback must re-check the session before resolving anything; the
// session may have moved on between the timer firing and the callback
// running.
type TimeoutFunc func(sessionID string, seat int)

// TurnClock runs at most one countdown per session, for the player on
// turn. Timers are bound to a generation counter so a stale fire after
// Stop or a restart is recognized and dropped.
type TurnClock struct {
	mu        sync.Mutex
	timers    map[string]*turnTimer
	gen       uint64
	onTimeout TimeoutFunc
}

type turnTimer struct {
	timer *time.Timer
	seat  int
	gen   uint64
}

func NewTurnClock(onTimeout TimeoutFunc) *TurnClock {
	return &TurnClock{
		timers:    make(map[string]*turnTimer),
		onTimeout: onTimeout,
	}
}

// Start arms the countdown for the given seat, replacing any previous
// timer for the session.
func (c *TurnClock) Start(sessionID string, seat int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.timers[sessionID]; ok {
		existing.timer.Stop()
	}
	if d < 0 {
		d = 0
	}

	c.gen++
	gen := c.gen
	tt := &turnTimer{seat: seat, gen: gen}
	tt.timer = time.AfterFunc(d, func() {
		c.fire(sessionID, gen)
	})
	c.timers[sessionID] = tt
}

// Stop cancels the session's countdown. Safe to call for sessions with
// no running timer.
func (c *TurnClock) Stop(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tt, ok := c.timers[sessionID]; ok {
		tt.timer.Stop()
		delete(c.timers, sessionID)
	}
}

// Running reports whether a countdown is armed for the session.
func (c *TurnClock) Running(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[sessionID]
	return ok
}

func (c *TurnClock) fire(sessionID string, gen uint64) {
	c.mu.Lock()
	tt, ok := c.timers[sessionID]
	if !ok || tt.gen != gen {
		// Cancelled or restarted after the timer fired. Benign race.
		c.mu.Unlock()
		return
	}
	seat := tt.seat
	delete(c.timers, sessionID)
	c.mu.Unlock()

	c.onTimeout(sessionID, seat)
}
