package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TimeControl identifies one of the fixed time budgets a game can be
// played under.
type TimeControl string

const (
	ControlBlitz3  TimeControl = "blitz-3"
	ControlBlitz5  TimeControl = "blitz-5"
	ControlRapid10 TimeControl = "rapid-10"
	ControlMove60  TimeControl = "move-60"
	ControlDaily   TimeControl = "daily"
)

// ClockStyle says how a time control charges the players.
type ClockStyle int

const (
	// ClockNone runs no clock at all (daily games).
	ClockNone ClockStyle = iota
	// ClockTotal is a chess-clock style running total per player.
	ClockTotal
	// ClockPerMove grants a fresh allowance on every turn.
	ClockPerMove
)

func ParseTimeControl(raw string) (TimeControl, error) {
	tc := TimeControl(raw)
	switch tc {
	case ControlBlitz3, ControlBlitz5, ControlRapid10, ControlMove60, ControlDaily:
		return tc, nil
	}
	return "", ErrBadTimeControl
}

func (tc TimeControl) Style() ClockStyle {
	switch tc {
	case ControlBlitz3, ControlBlitz5, ControlRapid10:
		return ClockTotal
	case ControlMove60:
		return ClockPerMove
	}
	return ClockNone
}

// Allowance is the total budget per player for ClockTotal controls and
// the per-turn budget for ClockPerMove controls. Zero for untimed games.
func (tc TimeControl) Allowance() time.Duration {
	switch tc {
	case ControlBlitz3:
		return 3 * time.Minute
	case ControlBlitz5:
		return 5 * time.Minute
	case ControlRapid10:
		return 10 * time.Minute
	case ControlMove60:
		return 60 * time.Second
	}
	return 0
}

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

type ResultKind string

const (
	ResultWin     ResultKind = "win"
	ResultDraw    ResultKind = "draw"
	ResultForfeit ResultKind = "forfeit"
	ResultTimeout ResultKind = "timeout"
)

// Result describes how a session ended. Player is the seat the kind
// refers to: the winner for win, the offender for forfeit and timeout,
// -1 for a draw.
type Result struct {
	Kind   ResultKind `json:"kind"`
	Player int        `json:"player"`
}

// Winner returns the winning seat, or -1 for a draw.
func (r Result) Winner() int {
	switch r.Kind {
	case ResultWin:
		return r.Player
	case ResultForfeit, ResultTimeout:
		return 1 - r.Player
	}
	return -1
}

func (r Result) String() string {
	if r.Kind == ResultDraw {
		return "draw"
	}
	return fmt.Sprintf("%s(%d)", r.Kind, r.Player)
}

// MoveRecord is one applied move, kept for the archive.
type MoveRecord struct {
	Ply      int             `bson:"ply" json:"ply"`
	Seat     int             `bson:"seat" json:"seat"`
	Username string          `bson:"username" json:"username"`
	Move     json.RawMessage `bson:"move" json:"move"`
	PlayedAt time.Time       `bson:"playedAt" json:"playedAt"`
}

// Session is one match between two players. All mutable fields are
// guarded by mu; the manager is the only writer.
type Session struct {
	ID             string
	GameType       string
	Control        TimeControl
	Players        [2]string
	Status         Status
	State          interface{}
	Turn           int
	Clocks         [2]time.Duration
	Connected      [2]bool
	CreatedAt      time.Time
	LastActivityAt time.Time
	Result         *Result

	moves         []MoveRecord
	turnStartedAt time.Time
	graceDeadline time.Time
	graceTimer    *time.Timer

	mu sync.Mutex
}

// seatOf maps a username to its seat index.
func (s *Session) seatOf(username string) (int, bool) {
	for i, p := range s.Players {
		if p == username {
			return i, true
		}
	}
	return -1, false
}

// SessionView is the snapshot sent to clients and handed to the archiver.
type SessionView struct {
	ID             string      `json:"id"`
	GameType       string      `json:"gameType"`
	TimeControl    TimeControl `json:"timeControl"`
	Players        [2]string   `json:"players"`
	Status         Status      `json:"status"`
	State          interface{} `json:"state"`
	Turn           int         `json:"turn"`
	ClocksMillis   [2]int64    `json:"clocksMillis"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastActivityAt time.Time   `json:"lastActivityAt"`
	Result         *Result     `json:"result,omitempty"`
}

// viewLocked builds a snapshot; callers must hold s.mu.
func (s *Session) viewLocked() SessionView {
	return SessionView{
		ID:             s.ID,
		GameType:       s.GameType,
		TimeControl:    s.Control,
		Players:        s.Players,
		Status:         s.Status,
		State:          s.State,
		Turn:           s.Turn,
		ClocksMillis:   [2]int64{s.Clocks[0].Milliseconds(), s.Clocks[1].Milliseconds()},
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		Result:         s.Result,
	}
}

// View returns a client-safe snapshot of the session.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}
