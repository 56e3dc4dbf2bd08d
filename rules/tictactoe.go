// Package rules holds the built-in game-rule collaborators. Each
// ruleset owns its game's semantics; the coordinator in package game
// only shuttles opaque state through them.
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/pixelhaven/gamehub-backend/game"
)

// TicTacToeState is the full board state, JSON-safe for the wire.
// Cells hold -1 for empty or the seat index that owns the cell.
type TicTacToeState struct {
	Cells [9]int `json:"cells"`
	Ply   int    `json:"ply"`
}

type ticTacToeMove struct {
	Cell int `json:"cell"`
}

// TicTacToe is the built-in 3x3 grid ruleset.
type TicTacToe struct{}

func NewTicTacToe() TicTacToe {
	return TicTacToe{}
}

func (TicTacToe) InitialState() interface{} {
	var s TicTacToeState
	for i := range s.Cells {
		s.Cells[i] = -1
	}
	return s
}

var ticTacToeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (TicTacToe) ApplyMove(state interface{}, seat int, move json.RawMessage) (interface{}, *game.Result, error) {
	s, ok := state.(TicTacToeState)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected state type %T", state)
	}

	var mv ticTacToeMove
	if err := json.Unmarshal(move, &mv); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", game.ErrInvalidMove, err)
	}
	if mv.Cell < 0 || mv.Cell >= len(s.Cells) {
		return nil, nil, fmt.Errorf("%w: cell %d out of range", game.ErrInvalidMove, mv.Cell)
	}
	if s.Cells[mv.Cell] != -1 {
		return nil, nil, fmt.Errorf("%w: cell %d is taken", game.ErrInvalidMove, mv.Cell)
	}

	s.Cells[mv.Cell] = seat
	s.Ply++

	for _, line := range ticTacToeLines {
		if s.Cells[line[0]] == seat && s.Cells[line[1]] == seat && s.Cells[line[2]] == seat {
			return s, &game.Result{Kind: game.ResultWin, Player: seat}, nil
		}
	}
	if s.Ply == len(s.Cells) {
		return s, &game.Result{Kind: game.ResultDraw, Player: -1}, nil
	}
	return s, nil, nil
}
