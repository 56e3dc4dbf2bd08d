package game

// Event is the envelope for every outbound message, matching the
// inbound envelope shape.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const (
	EventMatchmakingQueued    = "matchmaking_queued"
	EventMatchmakingCancelled = "matchmaking_cancelled"
	EventGameStart            = "game_start"
	EventGameUpdate           = "game_update"
	EventGameEnded            = "game_ended"
	EventChallengeSent        = "challenge_sent"
	EventChallengeReceived    = "challenge_received"
	EventChallengeDeclined    = "challenge_declined"
	EventChallengeExpired     = "challenge_expired"
	EventPrivateGameCreated   = "private_game_created"
	EventPrivateGameExpired   = "private_game_expired"
	EventOpponentDisconnected = "opponent_disconnected"
	EventOpponentReconnected  = "opponent_reconnected"
	EventJoinError            = "join_error"
	EventMoveError            = "move_error"
	EventError                = "error"
)

// ErrorData is the payload of join_error, move_error and error events.
type ErrorData struct {
	Reason string `json:"reason"`
}

// GameEndedData pairs the final snapshot with the result for clients.
type GameEndedData struct {
	Session SessionView `json:"session"`
	Result  Result      `json:"result"`
}

// Notifier delivers events to a player's live connection, if any.
// Delivery is best effort; the transport owns queuing and backpressure.
type Notifier interface {
	Send(username string, event Event)
}

// Presence answers whether a player currently has a live connection.
type Presence interface {
	IsOnline(username string) bool
}

// Archiver persists a finished session. Called off the hot path; a nil
// archiver disables persistence.
type Archiver interface {
	ArchiveSession(view SessionView, moves []MoveRecord)
}
