package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteCreateAndClaim(t *testing.T) {
	r := NewInviteRegistry(time.Minute)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)
	assert.Len(t, inv.Code, codeLength)
	assert.Equal(t, InviteOpen, inv.Status)
	for _, ch := range inv.Code {
		assert.Contains(t, codeAlphabet, string(ch))
	}

	claimed, err := r.Claim(inv.Code, "bob")
	require.NoError(t, err)
	assert.Equal(t, InviteClaimed, claimed.Status)
	assert.Equal(t, "alice", claimed.Creator)
}

func TestInviteClaimIsSingleUse(t *testing.T) {
	r := NewInviteRegistry(time.Minute)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	_, err = r.Claim(inv.Code, "bob")
	require.NoError(t, err)

	_, err = r.Claim(inv.Code, "carol")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestInviteConcurrentClaimExactlyOnce(t *testing.T) {
	r := NewInviteRegistry(time.Minute)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	const claimers = 16
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Claim(inv.Code, "joiner")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestInviteSelfJoin(t *testing.T) {
	r := NewInviteRegistry(time.Minute)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	_, err = r.Claim(inv.Code, "alice")
	assert.ErrorIs(t, err, ErrSelfJoin)

	// the failed self-join did not burn the code
	_, err = r.Claim(inv.Code, "bob")
	assert.NoError(t, err)
}

func TestInviteUnknownAndExpired(t *testing.T) {
	r := NewInviteRegistry(10 * time.Millisecond)

	_, err := r.Claim("NOPE42", "bob")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = r.Claim(inv.Code, "bob")
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestInviteRelease(t *testing.T) {
	r := NewInviteRegistry(time.Minute)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	_, err = r.Claim(inv.Code, "bob")
	require.NoError(t, err)

	r.Release(inv.Code)

	_, err = r.Claim(inv.Code, "carol")
	assert.NoError(t, err)
}

func TestInviteSweepExpired(t *testing.T) {
	r := NewInviteRegistry(10 * time.Millisecond)

	inv, err := r.Create("alice", "tictactoe", ControlDaily)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	swept := r.SweepExpired()
	require.Len(t, swept, 1)
	assert.Equal(t, inv.Code, swept[0].Code)
	assert.Equal(t, InviteExpired, swept[0].Status)
	assert.Equal(t, 0, r.Len())
}
