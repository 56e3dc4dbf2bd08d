package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type InviteStatus string

const (
	InviteOpen    InviteStatus = "open"
	InviteClaimed InviteStatus = "claimed"
	InviteExpired InviteStatus = "expired"
)

// Invite is a pending private game reachable through a short shareable
// code.
type Invite struct {
	Code      string       `json:"code"`
	Creator   string       `json:"creator"`
	GameType  string       `json:"gameType"`
	Control   TimeControl  `json:"timeControl"`
	Status    InviteStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// codeAlphabet avoids lookalike characters (0/O, 1/I) so codes survive
// being read aloud or typed from a phone screen.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// InviteRegistry issues invite codes and enforces single-use claims.
type InviteRegistry struct {
	mu      sync.Mutex
	invites map[string]*Invite
	ttl     time.Duration
}

func NewInviteRegistry(ttl time.Duration) *InviteRegistry {
	return &InviteRegistry{
		invites: make(map[string]*Invite),
		ttl:     ttl,
	}
}

func (r *InviteRegistry) Create(creator, gameType string, control TimeControl) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.newCodeLocked()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &Invite{
		Code:      code,
		Creator:   creator,
		GameType:  gameType,
		Control:   control,
		Status:    InviteOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.invites[code] = inv
	return inv, nil
}

// Claim consumes an open invite. The status flip happens under the
// registry lock, so of two simultaneous claims exactly one succeeds and
// the other sees AlreadyClaimed.
func (r *InviteRegistry) Claim(code, joiner string) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invites[code]
	if !ok {
		return nil, ErrInviteNotFound
	}
	if inv.Status == InviteClaimed {
		return nil, ErrAlreadyClaimed
	}
	if inv.Status == InviteExpired || time.Now().After(inv.ExpiresAt) {
		inv.Status = InviteExpired
		return nil, ErrInviteExpired
	}
	if inv.Creator == joiner {
		return nil, ErrSelfJoin
	}

	inv.Status = InviteClaimed
	return inv, nil
}

// Release reopens a claimed invite after a failed join so the code is
// not burned by someone else's error.
func (r *InviteRegistry) Release(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv, ok := r.invites[code]; ok && inv.Status == InviteClaimed {
		inv.Status = InviteOpen
	}
}

// SweepExpired drops expired and claimed invites. Dropped codes become
// reusable, which is fine; collision checks only ever run against open
// codes.
func (r *InviteRegistry) SweepExpired() []*Invite {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var swept []*Invite
	for code, inv := range r.invites {
		switch {
		case inv.Status == InviteClaimed:
			delete(r.invites, code)
		case now.After(inv.ExpiresAt):
			inv.Status = InviteExpired
			swept = append(swept, inv)
			delete(r.invites, code)
		}
	}
	return swept
}

func (r *InviteRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invites)
}

func (r *InviteRegistry) newCodeLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				return "", err
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		code := string(buf)
		if existing, taken := r.invites[code]; !taken || existing.Status != InviteOpen {
			delete(r.invites, code)
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a free invite code")
}
