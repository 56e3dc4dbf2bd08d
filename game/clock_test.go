package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedTimeout struct {
	sessionID string
	seat      int
}

func collectTimeouts() (*TurnClock, chan firedTimeout) {
	ch := make(chan firedTimeout, 8)
	clock := NewTurnClock(func(sessionID string, seat int) {
		ch <- firedTimeout{sessionID, seat}
	})
	return clock, ch
}

func TestTurnClockFires(t *testing.T) {
	clock, fired := collectTimeouts()

	clock.Start("s1", 1, 10*time.Millisecond)

	select {
	case f := <-fired:
		assert.Equal(t, "s1", f.sessionID)
		assert.Equal(t, 1, f.seat)
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}
	assert.False(t, clock.Running("s1"))
}

func TestTurnClockStop(t *testing.T) {
	clock, fired := collectTimeouts()

	clock.Start("s1", 0, 20*time.Millisecond)
	clock.Stop("s1")

	select {
	case f := <-fired:
		t.Fatalf("stopped timer fired: %+v", f)
	case <-time.After(60 * time.Millisecond):
	}
	assert.False(t, clock.Running("s1"))
}

func TestTurnClockRestartInvalidatesOldTimer(t *testing.T) {
	clock, fired := collectTimeouts()

	// The short timer is replaced before it fires; only the seat from
	// the second Start may ever be reported.
	clock.Start("s1", 0, 15*time.Millisecond)
	clock.Start("s1", 1, 40*time.Millisecond)

	select {
	case f := <-fired:
		assert.Equal(t, 1, f.seat)
	case <-time.After(time.Second):
		t.Fatal("replacement timer never fired")
	}

	select {
	case f := <-fired:
		t.Fatalf("stale timer fired: %+v", f)
	case <-time.After(40 * time.Millisecond):
	}
}

func TestTurnClockIndependentSessions(t *testing.T) {
	clock, fired := collectTimeouts()

	clock.Start("s1", 0, 10*time.Millisecond)
	clock.Start("s2", 1, 10*time.Millisecond)

	got := map[string]int{}
	var mu sync.Mutex
	for i := 0; i < 2; i++ {
		select {
		case f := <-fired:
			mu.Lock()
			got[f.sessionID] = f.seat
			mu.Unlock()
		case <-time.After(time.Second):
			t.Fatal("expected two timeouts")
		}
	}
	require.Len(t, got, 2)
	assert.Equal(t, 0, got["s1"])
	assert.Equal(t, 1, got["s2"])
}

func TestTurnClockNegativeDurationFiresImmediately(t *testing.T) {
	clock, fired := collectTimeouts()

	clock.Start("s1", 0, -time.Second)

	select {
	case f := <-fired:
		assert.Equal(t, 0, f.seat)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}
