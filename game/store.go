package game

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store holds every live session plus a reverse index from player to
// session id. Both maps change together under one mutex so a player can
// never be booked into two sessions at once.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[string]string
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
	}
}

// Add registers a new session. It fails with ErrAlreadyInSession if
// either player is still booked into a live session.
func (st *Store) Add(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, p := range s.Players {
		if _, busy := st.byPlayer[p]; busy {
			return ErrAlreadyInSession
		}
	}

	st.sessions[s.ID] = s
	for _, p := range s.Players {
		st.byPlayer[p] = s.ID
	}
	return nil
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// ByPlayer returns the live session containing the player, if any.
func (st *Store) ByPlayer(username string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	id, ok := st.byPlayer[username]
	if !ok {
		return nil, false
	}
	s, ok := st.sessions[id]
	if !ok {
		// Reverse index out of sync with the session map. This is a
		// corruption bug, not a user error.
		log.WithFields(log.Fields{"username": username, "session": id}).
			Error("reverse index points at a missing session")
		return nil, false
	}
	return s, ok
}

// ReleasePlayers frees both players while keeping the session readable.
// Terminal sessions stay around for late clients until the sweeper
// evicts them; the reverse index must not hold players hostage that
// long.
func (st *Store) ReleasePlayers(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return
	}
	for _, p := range s.Players {
		if st.byPlayer[p] == id {
			delete(st.byPlayer, p)
		}
	}
}

// Remove drops the session and frees both players. Removing an unknown
// id is a no-op.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return
	}
	delete(st.sessions, id)
	for _, p := range s.Players {
		if st.byPlayer[p] == id {
			delete(st.byPlayer, p)
		}
	}
}

// Snapshot returns the current session set for sweeps.
func (st *Store) Snapshot() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
