package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusAccepted ChallengeStatus = "accepted"
	ChallengeStatusDeclined ChallengeStatus = "declined"
	ChallengeStatusExpired  ChallengeStatus = "expired"
)

// Challenge is a direct match request from one named player to another.
type Challenge struct {
	ID         string          `json:"id"`
	Challenger string          `json:"challenger"`
	Target     string          `json:"target"`
	GameType   string          `json:"gameType"`
	Control    TimeControl     `json:"timeControl"`
	Status     ChallengeStatus `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
}

// ChallengeBroker tracks outstanding challenges. A challenger may have
// several challenges out to different targets, but only one pending per
// (challenger, target) pair.
type ChallengeBroker struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
	ttl        time.Duration
}

func NewChallengeBroker(ttl time.Duration) *ChallengeBroker {
	return &ChallengeBroker{
		challenges: make(map[string]*Challenge),
		ttl:        ttl,
	}
}

func (b *ChallengeBroker) Create(challenger, target, gameType string, control TimeControl) (*Challenge, error) {
	if challenger == target {
		return nil, ErrSelfChallenge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for _, c := range b.challenges {
		if c.Challenger == challenger && c.Target == target && c.ExpiresAt.After(now) {
			return nil, ErrAlreadyPending
		}
	}

	c := &Challenge{
		ID:         uuid.NewString(),
		Challenger: challenger,
		Target:     target,
		GameType:   gameType,
		Control:    control,
		Status:     ChallengeStatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(b.ttl),
	}
	b.challenges[c.ID] = c
	return c, nil
}

// Accept consumes the challenge. Only the designated target may accept,
// and accepting after the expiry window always fails.
func (b *ChallengeBroker) Accept(id, actor string) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if c.Target != actor {
		return nil, ErrNotTarget
	}
	if time.Now().After(c.ExpiresAt) {
		c.Status = ChallengeStatusExpired
		delete(b.challenges, id)
		return nil, ErrChallengeExpired
	}

	c.Status = ChallengeStatusAccepted
	delete(b.challenges, id)
	return c, nil
}

// Decline removes the challenge. Declining one that is already gone is
// reported as not found; callers treat that as a safe no-op.
func (b *ChallengeBroker) Decline(id, actor string) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if c.Target != actor {
		return nil, ErrNotTarget
	}

	c.Status = ChallengeStatusDeclined
	delete(b.challenges, id)
	return c, nil
}

// SweepExpired removes challenges past their expiry and returns them so
// the caller can notify the challengers.
func (b *ChallengeBroker) SweepExpired() []*Challenge {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	var expired []*Challenge
	for id, c := range b.challenges {
		if now.After(c.ExpiresAt) {
			c.Status = ChallengeStatusExpired
			expired = append(expired, c)
			delete(b.challenges, id)
		}
	}
	return expired
}

func (b *ChallengeBroker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.challenges)
}
