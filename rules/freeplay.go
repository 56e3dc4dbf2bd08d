package rules

import (
	"encoding/json"
	"fmt"

	"github.com/pixelhaven/gamehub-backend/game"
)

// FreeplayState carries no server-side semantics, only the last payload
// and a ply counter. Used for game types whose rules run in the client;
// the server still enforces turn order and clocks.
type FreeplayState struct {
	Ply      int             `json:"ply"`
	LastMove json.RawMessage `json:"lastMove,omitempty"`
}

type freeplayMove struct {
	Result *game.Result `json:"result,omitempty"`
}

// Freeplay accepts any well-formed move and passes it through. A move
// may carry a result claim, which ends the game. Client-authoritative
// casual games report their outcome this way.
type Freeplay struct{}

func NewFreeplay() Freeplay {
	return Freeplay{}
}

func (Freeplay) InitialState() interface{} {
	return FreeplayState{}
}

func (Freeplay) ApplyMove(state interface{}, seat int, move json.RawMessage) (interface{}, *game.Result, error) {
	s, ok := state.(FreeplayState)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected state type %T", state)
	}

	var mv freeplayMove
	if err := json.Unmarshal(move, &mv); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", game.ErrInvalidMove, err)
	}

	if mv.Result != nil {
		if err := validateResultClaim(mv.Result); err != nil {
			return nil, nil, err
		}
	}

	s.Ply++
	s.LastMove = move
	if mv.Result != nil {
		return s, mv.Result, nil
	}
	return s, nil, nil
}

// validateResultClaim bounds what a client may claim: timeouts belong
// to the server clock and a draw names no player.
func validateResultClaim(r *game.Result) error {
	switch r.Kind {
	case game.ResultWin, game.ResultForfeit:
		if r.Player != 0 && r.Player != 1 {
			return fmt.Errorf("%w: result player %d out of range", game.ErrInvalidMove, r.Player)
		}
	case game.ResultDraw:
		if r.Player != -1 {
			return fmt.Errorf("%w: a draw names no player", game.ErrInvalidMove)
		}
	default:
		return fmt.Errorf("%w: unknown result kind %q", game.ErrInvalidMove, r.Kind)
	}
	return nil
}
