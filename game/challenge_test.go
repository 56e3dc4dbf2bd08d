package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeAcceptFlow(t *testing.T) {
	b := NewChallengeBroker(time.Minute)

	c, err := b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)
	assert.Equal(t, ChallengeStatusPending, c.Status)
	assert.NotEmpty(t, c.ID)

	accepted, err := b.Accept(c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, ChallengeStatusAccepted, accepted.Status)
	assert.Equal(t, 0, b.Len())

	// accepting a consumed challenge fails
	_, err = b.Accept(c.ID, "bob")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeOnlyTargetMayAnswer(t *testing.T) {
	b := NewChallengeBroker(time.Minute)

	c, err := b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)

	_, err = b.Accept(c.ID, "alice")
	assert.ErrorIs(t, err, ErrNotTarget)
	_, err = b.Decline(c.ID, "carol")
	assert.ErrorIs(t, err, ErrNotTarget)

	// the failed answers left it pending
	assert.Equal(t, 1, b.Len())
}

func TestChallengeSelfAndDuplicate(t *testing.T) {
	b := NewChallengeBroker(time.Minute)

	_, err := b.Create("alice", "alice", "tictactoe", ControlBlitz5)
	assert.ErrorIs(t, err, ErrSelfChallenge)

	_, err = b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)
	_, err = b.Create("alice", "bob", "checkers", ControlDaily)
	assert.ErrorIs(t, err, ErrAlreadyPending)

	// a challenger may have challenges out to several targets, and a
	// target may have several incoming
	_, err = b.Create("alice", "carol", "tictactoe", ControlBlitz5)
	require.NoError(t, err)
	_, err = b.Create("dave", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
}

func TestChallengeDecline(t *testing.T) {
	b := NewChallengeBroker(time.Minute)

	c, err := b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)

	declined, err := b.Decline(c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, ChallengeStatusDeclined, declined.Status)

	_, err = b.Decline(c.ID, "bob")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeAcceptAfterExpiry(t *testing.T) {
	b := NewChallengeBroker(10 * time.Millisecond)

	c, err := b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = b.Accept(c.ID, "bob")
	assert.ErrorIs(t, err, ErrChallengeExpired)
	assert.Equal(t, 0, b.Len())
}

func TestChallengeSweepExpired(t *testing.T) {
	b := NewChallengeBroker(10 * time.Millisecond)

	_, err := b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)

	assert.Empty(t, b.SweepExpired())

	time.Sleep(30 * time.Millisecond)

	expired := b.SweepExpired()
	require.Len(t, expired, 1)
	assert.Equal(t, ChallengeStatusExpired, expired[0].Status)
	assert.Equal(t, "alice", expired[0].Challenger)
	assert.Equal(t, 0, b.Len())

	// after expiry the pair may challenge again
	_, err = b.Create("alice", "bob", "tictactoe", ControlBlitz5)
	require.NoError(t, err)
}
