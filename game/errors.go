package game

import "errors"

// Sentinel errors for everything a client-initiated operation can get
// wrong. They are recovered at the request boundary and turned into a
// reason code for the client; they never take the coordinator down.
var (
	ErrBadTimeControl  = errors.New("unknown time control")
	ErrUnknownGameType = errors.New("unknown game type")

	ErrAlreadyQueued    = errors.New("already queued for matchmaking")
	ErrAlreadyInSession = errors.New("already in an active session")
	ErrNotQueued        = errors.New("not queued for matchmaking")

	ErrSelfChallenge     = errors.New("cannot challenge yourself")
	ErrTargetOffline     = errors.New("target player is offline")
	ErrTargetInSession   = errors.New("target player is already in a session")
	ErrAlreadyPending    = errors.New("challenge to this player already pending")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrNotTarget         = errors.New("only the challenged player may answer")
	ErrChallengeExpired  = errors.New("challenge expired")

	ErrInviteNotFound = errors.New("invite code not found")
	ErrInviteExpired  = errors.New("invite code expired")
	ErrAlreadyClaimed = errors.New("invite code already claimed")
	ErrSelfJoin       = errors.New("cannot join your own private game")

	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrNotInSession     = errors.New("player is not part of this session")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidMove      = errors.New("invalid move")
)

var reasonCodes = map[error]string{
	ErrBadTimeControl:    "bad_time_control",
	ErrUnknownGameType:   "unknown_game_type",
	ErrAlreadyQueued:     "already_queued",
	ErrAlreadyInSession:  "already_in_session",
	ErrNotQueued:         "not_queued",
	ErrSelfChallenge:     "self_challenge",
	ErrTargetOffline:     "target_offline",
	ErrTargetInSession:   "target_in_session",
	ErrAlreadyPending:    "challenge_already_pending",
	ErrChallengeNotFound: "challenge_not_found",
	ErrNotTarget:         "not_challenge_target",
	ErrChallengeExpired:  "challenge_expired",
	ErrInviteNotFound:    "invite_not_found",
	ErrInviteExpired:     "invite_expired",
	ErrAlreadyClaimed:    "invite_already_claimed",
	ErrSelfJoin:          "self_join",
	ErrSessionNotFound:   "session_not_found",
	ErrSessionNotActive:  "session_not_active",
	ErrNotInSession:      "not_in_session",
	ErrNotYourTurn:       "not_your_turn",
	ErrInvalidMove:       "invalid_move",
}

// Reason maps an error to the stable code sent over the wire.
func Reason(err error) string {
	for sentinel, code := range reasonCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "internal_error"
}
