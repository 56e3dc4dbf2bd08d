package game

import (
	"sync"
	"time"
)

// Ticket is one waiting matchmaking request.
type Ticket struct {
	Username   string
	GameType   string
	Control    TimeControl
	EnqueuedAt time.Time
}

// matches reports whether two tickets can be paired.
func (t *Ticket) matches(gameType string, control TimeControl) bool {
	return t.GameType == gameType && t.Control == control
}

// Queue pairs waiting players with identical (gameType, timeControl).
// Tickets are kept in arrival order so the longest waiter is always
// paired first.
type Queue struct {
	mu       sync.Mutex
	tickets  []*Ticket
	byPlayer map[string]*Ticket
}

func NewQueue() *Queue {
	return &Queue{byPlayer: make(map[string]*Ticket)}
}

// Enqueue files a ticket for the player. If a compatible ticket is
// already waiting, the oldest one is removed and returned as the
// opponent and no ticket is filed for the caller.
func (q *Queue) Enqueue(username, gameType string, control TimeControl) (*Ticket, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, queued := q.byPlayer[username]; queued {
		return nil, ErrAlreadyQueued
	}

	for i, t := range q.tickets {
		if t.matches(gameType, control) {
			q.removeAtLocked(i)
			return t, nil
		}
	}

	ticket := &Ticket{
		Username:   username,
		GameType:   gameType,
		Control:    control,
		EnqueuedAt: time.Now(),
	}
	q.tickets = append(q.tickets, ticket)
	q.byPlayer[username] = ticket
	return nil, nil
}

// Cancel removes the player's ticket.
func (q *Queue) Cancel(username string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, queued := q.byPlayer[username]; !queued {
		return ErrNotQueued
	}
	for i, t := range q.tickets {
		if t.Username == username {
			q.removeAtLocked(i)
			break
		}
	}
	return nil
}

// SweepStale removes and returns tickets older than maxAge.
func (q *Queue) SweepStale(maxAge time.Duration) []*Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var stale []*Ticket
	kept := q.tickets[:0]
	for _, t := range q.tickets {
		if t.EnqueuedAt.Before(cutoff) {
			stale = append(stale, t)
			delete(q.byPlayer, t.Username)
		} else {
			kept = append(kept, t)
		}
	}
	q.tickets = kept
	return stale
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tickets)
}

func (q *Queue) removeAtLocked(i int) {
	t := q.tickets[i]
	q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
	delete(q.byPlayer, t.Username)
}
