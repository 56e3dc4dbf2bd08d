package rules

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelhaven/gamehub-backend/game"
)

func cellMove(cell int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"cell":%d}`, cell))
}

// playOut applies the cells alternating seats starting with seat 0 and
// returns the final state and result.
func playOut(t *testing.T, cells []int) (TicTacToeState, *game.Result) {
	t.Helper()
	ttt := NewTicTacToe()
	state := ttt.InitialState()
	var result *game.Result
	for i, cell := range cells {
		var err error
		state, result, err = ttt.ApplyMove(state, i%2, cellMove(cell))
		require.NoError(t, err)
		if i < len(cells)-1 {
			require.Nil(t, result, "game ended early at move %d", i)
		}
	}
	return state.(TicTacToeState), result
}

func TestTicTacToeInitialState(t *testing.T) {
	s := NewTicTacToe().InitialState().(TicTacToeState)
	assert.Equal(t, 0, s.Ply)
	for _, c := range s.Cells {
		assert.Equal(t, -1, c)
	}
}

func TestTicTacToeRowWin(t *testing.T) {
	// seat 0 takes the top row
	_, result := playOut(t, []int{0, 3, 1, 4, 2})
	require.NotNil(t, result)
	assert.Equal(t, game.Result{Kind: game.ResultWin, Player: 0}, *result)
}

func TestTicTacToeDiagonalWinBySeatOne(t *testing.T) {
	_, result := playOut(t, []int{1, 0, 3, 4, 5, 8})
	require.NotNil(t, result)
	assert.Equal(t, game.Result{Kind: game.ResultWin, Player: 1}, *result)
}

func TestTicTacToeDraw(t *testing.T) {
	// 0 1 0
	// 0 1 1
	// 1 0 0
	s, result := playOut(t, []int{0, 1, 2, 4, 3, 5, 7, 6, 8})
	require.NotNil(t, result)
	assert.Equal(t, game.ResultDraw, result.Kind)
	assert.Equal(t, -1, result.Winner())
	assert.Equal(t, 9, s.Ply)
}

func TestTicTacToeRejectsBadMoves(t *testing.T) {
	ttt := NewTicTacToe()
	state := ttt.InitialState()

	_, _, err := ttt.ApplyMove(state, 0, cellMove(9))
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	_, _, err = ttt.ApplyMove(state, 0, cellMove(-1))
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	_, _, err = ttt.ApplyMove(state, 0, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	state, result, err := ttt.ApplyMove(state, 0, cellMove(4))
	require.NoError(t, err)
	require.Nil(t, result)

	_, _, err = ttt.ApplyMove(state, 1, cellMove(4))
	assert.ErrorIs(t, err, game.ErrInvalidMove)
}

func TestTicTacToeStateIsImmutable(t *testing.T) {
	ttt := NewTicTacToe()
	initial := ttt.InitialState()

	_, _, err := ttt.ApplyMove(initial, 0, cellMove(0))
	require.NoError(t, err)

	assert.Equal(t, -1, initial.(TicTacToeState).Cells[0])
}

func TestFreeplayPassesMovesThrough(t *testing.T) {
	fp := NewFreeplay()
	state := fp.InitialState()

	move := json.RawMessage(`{"piece":"a3","to":"b4"}`)
	state, result, err := fp.ApplyMove(state, 0, move)
	require.NoError(t, err)
	assert.Nil(t, result)

	s := state.(FreeplayState)
	assert.Equal(t, 1, s.Ply)
	assert.JSONEq(t, string(move), string(s.LastMove))
}

func TestFreeplayResultClaimEndsGame(t *testing.T) {
	fp := NewFreeplay()
	state := fp.InitialState()

	_, result, err := fp.ApplyMove(state, 1, json.RawMessage(`{"result":{"kind":"win","player":1}}`))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, game.Result{Kind: game.ResultWin, Player: 1}, *result)
}

func TestFreeplayRejectsMalformedMoves(t *testing.T) {
	fp := NewFreeplay()
	_, _, err := fp.ApplyMove(fp.InitialState(), 0, json.RawMessage(`{`))
	assert.ErrorIs(t, err, game.ErrInvalidMove)
}

func TestFreeplayBoundsResultClaims(t *testing.T) {
	fp := NewFreeplay()

	bad := []string{
		`{"result":{"kind":"rage_quit","player":0}}`,
		`{"result":{"kind":"win","player":2}}`,
		`{"result":{"kind":"forfeit","player":-1}}`,
		`{"result":{"kind":"timeout","player":0}}`,
		`{"result":{"kind":"draw","player":0}}`,
	}
	for _, move := range bad {
		state, result, err := fp.ApplyMove(fp.InitialState(), 0, json.RawMessage(move))
		assert.ErrorIs(t, err, game.ErrInvalidMove, "move %s", move)
		assert.Nil(t, state)
		assert.Nil(t, result)
	}

	_, result, err := fp.ApplyMove(fp.InitialState(), 0, json.RawMessage(`{"result":{"kind":"draw","player":-1}}`))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, -1, result.Winner())
}
