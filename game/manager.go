package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Options are the coordination knobs, filled from config.
type Options struct {
	ReconnectGrace   time.Duration
	ChallengeTTL     time.Duration
	InviteTTL        time.Duration
	TicketMaxAge     time.Duration
	PauseClockOnDrop bool
	// TerminalRetention is how long a finished session stays readable
	// before the sweeper evicts it.
	TerminalRetention time.Duration
}

// Manager orchestrates the whole session lifecycle: matchmaking,
// challenges and invites funnel into session creation here, and moves,
// forfeits, disconnects and timeouts resolve through it.
type Manager struct {
	opts       Options
	store      *Store
	queue      *Queue
	challenges *ChallengeBroker
	invites    *InviteRegistry
	clock      *TurnClock
	rules      *Registry
	notifier   Notifier
	presence   Presence
	archiver   Archiver

	// mu serializes every operation that books or frees players, so a
	// player can never be matched into two sessions at once. Move
	// application only takes the per-session lock.
	mu sync.Mutex
}

func NewManager(opts Options, rules *Registry, notifier Notifier, presence Presence, archiver Archiver) *Manager {
	if opts.TerminalRetention <= 0 {
		opts.TerminalRetention = 5 * time.Minute
	}
	m := &Manager{
		opts:       opts,
		store:      NewStore(),
		queue:      NewQueue(),
		challenges: NewChallengeBroker(opts.ChallengeTTL),
		invites:    NewInviteRegistry(opts.InviteTTL),
		rules:      rules,
		notifier:   notifier,
		presence:   presence,
		archiver:   archiver,
	}
	m.clock = NewTurnClock(m.HandleTimeout)
	return m
}

// SessionFor returns the live session containing the player, if any.
func (m *Manager) SessionFor(username string) (*Session, bool) {
	return m.store.ByPlayer(username)
}

// Session returns a live session by id.
func (m *Manager) Session(id string) (*Session, bool) {
	return m.store.Get(id)
}

func (m *Manager) validate(gameType, rawControl string) (TimeControl, error) {
	control, err := ParseTimeControl(rawControl)
	if err != nil {
		return "", err
	}
	if _, ok := m.rules.Lookup(gameType); !ok {
		return "", ErrUnknownGameType
	}
	return control, nil
}

// FindMatch queues the player, pairing immediately with the longest
// compatible waiter when one exists.
func (m *Manager) FindMatch(username, gameType, rawControl string) error {
	control, err := m.validate(gameType, rawControl)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.store.ByPlayer(username); busy {
		return ErrAlreadyInSession
	}

	for {
		opponent, err := m.queue.Enqueue(username, gameType, control)
		if err != nil {
			return err
		}
		if opponent == nil {
			m.notify(username, Event{Type: EventMatchmakingQueued, Data: map[string]string{
				"gameType":    gameType,
				"timeControl": rawControl,
			}})
			return nil
		}
		if _, busy := m.store.ByPlayer(opponent.Username); busy {
			// Stale ticket: the waiter entered a session through
			// another path. Drop it and keep looking.
			log.WithField("username", opponent.Username).Warn("discarding stale matchmaking ticket")
			continue
		}

		// The longer waiter takes seat 0 and moves first.
		m.createSessionLocked(gameType, control, [2]string{opponent.Username, username})
		return nil
	}
}

// CancelMatchmaking removes the player's ticket.
func (m *Manager) CancelMatchmaking(username string) error {
	if err := m.queue.Cancel(username); err != nil {
		return err
	}
	m.notify(username, Event{Type: EventMatchmakingCancelled, Data: map[string]string{"reason": "cancelled"}})
	return nil
}

// ChallengePlayer files a direct challenge against a named player.
func (m *Manager) ChallengePlayer(challenger, target, gameType, rawControl string) (*Challenge, error) {
	control, err := m.validate(gameType, rawControl)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if challenger == target {
		return nil, ErrSelfChallenge
	}
	if !m.online(target) {
		return nil, ErrTargetOffline
	}
	if _, busy := m.store.ByPlayer(target); busy {
		return nil, ErrTargetInSession
	}
	if _, busy := m.store.ByPlayer(challenger); busy {
		return nil, ErrAlreadyInSession
	}

	c, err := m.challenges.Create(challenger, target, gameType, control)
	if err != nil {
		return nil, err
	}

	m.notify(target, Event{Type: EventChallengeReceived, Data: c})
	m.notify(challenger, Event{Type: EventChallengeSent, Data: c})
	return c, nil
}

// AcceptChallenge converts a pending challenge into a session. Only the
// challenged player may accept.
func (m *Manager) AcceptChallenge(challengeID, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.challenges.Accept(challengeID, actor)
	if err != nil {
		return err
	}
	if _, busy := m.store.ByPlayer(actor); busy {
		return ErrAlreadyInSession
	}
	if _, busy := m.store.ByPlayer(c.Challenger); busy {
		return ErrTargetInSession
	}
	if !m.online(c.Challenger) {
		return ErrTargetOffline
	}

	m.createSessionLocked(c.GameType, c.Control, [2]string{c.Challenger, actor})
	return nil
}

// DeclineChallenge removes a pending challenge and tells the
// challenger. Declining twice is a harmless no-op.
func (m *Manager) DeclineChallenge(challengeID, actor string) error {
	c, err := m.challenges.Decline(challengeID, actor)
	if errors.Is(err, ErrChallengeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	m.notify(c.Challenger, Event{Type: EventChallengeDeclined, Data: map[string]string{
		"challengeId": c.ID,
		"by":          actor,
	}})
	return nil
}

// CreatePrivateGame issues a shareable invite code.
func (m *Manager) CreatePrivateGame(creator, gameType, rawControl string) (*Invite, error) {
	control, err := m.validate(gameType, rawControl)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.store.ByPlayer(creator); busy {
		return nil, ErrAlreadyInSession
	}

	inv, err := m.invites.Create(creator, gameType, control)
	if err != nil {
		return nil, err
	}
	m.notify(creator, Event{Type: EventPrivateGameCreated, Data: inv})
	return inv, nil
}

// JoinPrivateGame claims an invite code and starts the session.
func (m *Manager) JoinPrivateGame(code, joiner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.store.ByPlayer(joiner); busy {
		return ErrAlreadyInSession
	}

	inv, err := m.invites.Claim(code, joiner)
	if err != nil {
		return err
	}
	if _, busy := m.store.ByPlayer(inv.Creator); busy {
		m.invites.Release(code)
		return ErrTargetInSession
	}
	if !m.online(inv.Creator) {
		m.invites.Release(code)
		return ErrTargetOffline
	}

	m.createSessionLocked(inv.GameType, inv.Control, [2]string{inv.Creator, joiner})
	return nil
}

// ApplyMove validates turn order, delegates legality to the ruleset and
// advances the session.
func (m *Manager) ApplyMove(sessionID, actor string, move json.RawMessage) error {
	sess, ok := m.store.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Status != StatusActive {
		return ErrSessionNotActive
	}
	seat, ok := sess.seatOf(actor)
	if !ok {
		return ErrNotInSession
	}
	if seat != sess.Turn {
		return ErrNotYourTurn
	}

	rules, ok := m.rules.Lookup(sess.GameType)
	if !ok {
		// Session exists for a game type nobody registered. That can
		// only happen through a coding bug.
		log.WithFields(log.Fields{"session": sess.ID, "gameType": sess.GameType}).
			Error("live session has no registered ruleset")
		return ErrUnknownGameType
	}

	newState, result, err := rules.ApplyMove(sess.State, seat, move)
	if err != nil {
		if errors.Is(err, ErrInvalidMove) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	now := time.Now()
	sess.State = newState
	sess.moves = append(sess.moves, MoveRecord{
		Ply:      len(sess.moves) + 1,
		Seat:     seat,
		Username: actor,
		Move:     move,
		PlayedAt: now,
	})
	m.chargeClockLocked(sess, seat, now)
	sess.Turn = 1 - seat
	sess.LastActivityAt = now
	sess.turnStartedAt = now

	if result != nil {
		m.finalizeLocked(sess, StatusCompleted, result)
		return nil
	}

	m.armClockLocked(sess)
	m.broadcastLocked(sess, EventGameUpdate)
	return nil
}

// Forfeit resolves the session immediately against the actor.
func (m *Manager) Forfeit(sessionID, actor string) error {
	sess, ok := m.store.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Status.Terminal() {
		return ErrSessionNotActive
	}
	seat, ok := sess.seatOf(actor)
	if !ok {
		return ErrNotInSession
	}

	m.finalizeLocked(sess, StatusAborted, &Result{Kind: ResultForfeit, Player: seat})
	return nil
}

// HandleDisconnect pauses the player's session and opens the reconnect
// grace window. Duplicate disconnects are no-ops.
func (m *Manager) HandleDisconnect(username string) {
	if err := m.queue.Cancel(username); err == nil {
		log.WithField("username", username).Info("cancelled matchmaking ticket on disconnect")
	}

	sess, ok := m.store.ByPlayer(username)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	seat, ok := sess.seatOf(username)
	if !ok || sess.Status.Terminal() {
		return
	}
	sess.Connected[seat] = false
	if sess.Status != StatusActive {
		return
	}

	now := time.Now()
	sess.Status = StatusPaused
	if m.opts.PauseClockOnDrop {
		m.chargeClockLocked(sess, sess.Turn, now)
		sess.turnStartedAt = now
		m.clock.Stop(sess.ID)
	}
	m.armGraceLocked(sess, seat)

	log.WithFields(log.Fields{"session": sess.ID, "username": username}).Info("session paused on disconnect")
	m.notify(sess.Players[1-seat], Event{Type: EventOpponentDisconnected, Data: map[string]interface{}{
		"sessionId":     sess.ID,
		"username":      username,
		"graceDeadline": sess.graceDeadline,
	}})
}

// HandleReconnect rebinds the player to their paused session, if one
// exists, and resumes it once both sides are back. The returned view is
// nil when the player has no live session.
func (m *Manager) HandleReconnect(username string) *SessionView {
	sess, ok := m.store.ByPlayer(username)
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	seat, ok := sess.seatOf(username)
	if !ok || sess.Status.Terminal() {
		return nil
	}
	sess.Connected[seat] = true

	if sess.Status == StatusPaused {
		other := 1 - seat
		if sess.Connected[other] {
			sess.Status = StatusActive
			sess.LastActivityAt = time.Now()
			if sess.graceTimer != nil {
				sess.graceTimer.Stop()
				sess.graceTimer = nil
			}
			sess.graceDeadline = time.Time{}
			if m.opts.PauseClockOnDrop {
				sess.turnStartedAt = time.Now()
				m.armClockLocked(sess)
			}
			log.WithFields(log.Fields{"session": sess.ID, "username": username}).Info("session resumed on reconnect")
			m.notify(sess.Players[other], Event{Type: EventOpponentReconnected, Data: map[string]string{
				"sessionId": sess.ID,
				"username":  username,
			}})
		} else if sess.graceTimer == nil {
			// The grace window belonged to this player; the opponent
			// is still gone, so the clock starts ticking for them.
			m.armGraceLocked(sess, other)
		}
	}

	view := sess.viewLocked()
	return &view
}

// HandleTimeout resolves a clock expiry reported by the turn clock. The
// session is re-checked from scratch; a stale fire against a session
// that already moved on is silently dropped.
func (m *Manager) HandleTimeout(sessionID string, seat int) {
	sess, ok := m.store.Get(sessionID)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Status.Terminal() || sess.Status == StatusWaiting {
		return
	}
	if sess.Status == StatusPaused && m.opts.PauseClockOnDrop {
		return
	}
	if sess.Turn != seat {
		return
	}

	sess.Clocks[seat] = 0
	result := &Result{Kind: ResultTimeout, Player: seat}
	if rules, ok := m.rules.Lookup(sess.GameType); ok {
		if policy, ok := rules.(TimeoutPolicy); ok {
			result = policy.TimeoutResult(sess.State, seat)
		}
	}
	if result == nil {
		// The ruleset absorbs the timeout with no penalty: grant a
		// fresh allowance and play on.
		sess.Clocks[seat] = sess.Control.Allowance()
		sess.turnStartedAt = time.Now()
		m.armClockLocked(sess)
		m.broadcastLocked(sess, EventGameUpdate)
		return
	}

	m.finalizeLocked(sess, StatusCompleted, result)
}

// Sweep expires challenges, invites and stale tickets, and aborts
// paused sessions whose grace window was lost. Run periodically.
func (m *Manager) Sweep() {
	for _, c := range m.challenges.SweepExpired() {
		m.notify(c.Challenger, Event{Type: EventChallengeExpired, Data: map[string]string{
			"challengeId": c.ID,
			"target":      c.Target,
		}})
	}
	for _, inv := range m.invites.SweepExpired() {
		m.notify(inv.Creator, Event{Type: EventPrivateGameExpired, Data: map[string]string{"code": inv.Code}})
	}
	if m.opts.TicketMaxAge > 0 {
		for _, t := range m.queue.SweepStale(m.opts.TicketMaxAge) {
			m.notify(t.Username, Event{Type: EventMatchmakingCancelled, Data: map[string]string{"reason": "expired"}})
		}
	}

	now := time.Now()
	for _, sess := range m.store.Snapshot() {
		sess.mu.Lock()
		switch {
		case sess.Status.Terminal():
			if now.Sub(sess.LastActivityAt) > m.opts.TerminalRetention {
				m.store.Remove(sess.ID)
			}
		case sess.Status == StatusPaused && sess.graceTimer == nil &&
			!sess.graceDeadline.IsZero() && now.After(sess.graceDeadline):
			seat := 0
			if sess.Connected[0] {
				seat = 1
			}
			m.finalizeLocked(sess, StatusAborted, &Result{Kind: ResultForfeit, Player: seat})
		}
		sess.mu.Unlock()
	}
}

// createSessionLocked builds and registers an active session. Callers
// hold m.mu and have verified both players are free.
func (m *Manager) createSessionLocked(gameType string, control TimeControl, players [2]string) *Session {
	rules, ok := m.rules.Lookup(gameType)
	if !ok {
		log.WithField("gameType", gameType).Error("session requested for unregistered game type")
		return nil
	}

	now := time.Now()
	sess := &Session{
		ID:             uuid.NewString(),
		GameType:       gameType,
		Control:        control,
		Players:        players,
		Status:         StatusActive,
		State:          rules.InitialState(),
		Turn:           0,
		Connected:      [2]bool{true, true},
		CreatedAt:      now,
		LastActivityAt: now,
		turnStartedAt:  now,
	}
	if control.Style() != ClockNone {
		allowance := control.Allowance()
		sess.Clocks = [2]time.Duration{allowance, allowance}
	}

	if err := m.store.Add(sess); err != nil {
		log.WithFields(log.Fields{"players": players, "gameType": gameType}).
			Error("could not register session for players that were just verified free")
		return nil
	}
	// Any leftover tickets die with the pairing.
	for _, p := range players {
		m.queue.Cancel(p)
	}

	sess.mu.Lock()
	m.armClockLocked(sess)
	m.broadcastLocked(sess, EventGameStart)
	sess.mu.Unlock()

	log.WithFields(log.Fields{
		"session":     sess.ID,
		"gameType":    gameType,
		"timeControl": control,
		"players":     players,
	}).Info("session started")
	return sess
}

// chargeClockLocked deducts the elapsed turn time from the given seat,
// or resets the allowance for per-move controls. Callers hold sess.mu.
func (m *Manager) chargeClockLocked(sess *Session, seat int, now time.Time) {
	switch sess.Control.Style() {
	case ClockTotal:
		sess.Clocks[seat] -= now.Sub(sess.turnStartedAt)
		if sess.Clocks[seat] < 0 {
			sess.Clocks[seat] = 0
		}
	case ClockPerMove:
		sess.Clocks[seat] = sess.Control.Allowance()
	}
}

// armClockLocked starts the countdown for the player on turn.
func (m *Manager) armClockLocked(sess *Session) {
	if sess.Control.Style() == ClockNone {
		return
	}
	m.clock.Start(sess.ID, sess.Turn, sess.Clocks[sess.Turn])
}

func (m *Manager) armGraceLocked(sess *Session, seat int) {
	sess.graceDeadline = time.Now().Add(m.opts.ReconnectGrace)
	sessionID := sess.ID
	sess.graceTimer = time.AfterFunc(m.opts.ReconnectGrace, func() {
		m.resolveGraceExpiry(sessionID, seat)
	})
}

// resolveGraceExpiry runs when a reconnect window closes. The session
// is re-fetched and re-checked; the player may have come back or the
// session may already be over.
func (m *Manager) resolveGraceExpiry(sessionID string, seat int) {
	sess, ok := m.store.Get(sessionID)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Status != StatusPaused {
		return
	}
	if sess.Connected[seat] {
		sess.graceTimer = nil
		if other := 1 - seat; !sess.Connected[other] {
			m.armGraceLocked(sess, other)
		}
		return
	}

	log.WithFields(log.Fields{"session": sess.ID, "username": sess.Players[seat]}).
		Info("reconnect grace elapsed, aborting session")
	m.finalizeLocked(sess, StatusAborted, &Result{Kind: ResultForfeit, Player: seat})
}

// finalizeLocked moves the session to a terminal status, stops every
// timer, frees both players and fans out the final snapshot. Callers
// hold sess.mu.
func (m *Manager) finalizeLocked(sess *Session, status Status, result *Result) {
	sess.Status = status
	sess.Result = result
	sess.LastActivityAt = time.Now()

	m.clock.Stop(sess.ID)
	if sess.graceTimer != nil {
		sess.graceTimer.Stop()
		sess.graceTimer = nil
	}
	// Players are freed immediately; the session itself stays readable
	// until the sweeper evicts it.
	m.store.ReleasePlayers(sess.ID)

	view := sess.viewLocked()
	if m.archiver != nil {
		moves := append([]MoveRecord(nil), sess.moves...)
		go m.archiver.ArchiveSession(view, moves)
	}
	for _, p := range sess.Players {
		m.notify(p, Event{Type: EventGameEnded, Data: GameEndedData{Session: view, Result: *result}})
	}

	log.WithFields(log.Fields{"session": sess.ID, "result": result.String()}).Info("session ended")
}

func (m *Manager) broadcastLocked(sess *Session, eventType string) {
	view := sess.viewLocked()
	for _, p := range sess.Players {
		m.notify(p, Event{Type: eventType, Data: view})
	}
}

func (m *Manager) notify(username string, event Event) {
	if m.notifier != nil {
		m.notifier.Send(username, event)
	}
}

func (m *Manager) online(username string) bool {
	if m.presence == nil {
		return true
	}
	return m.presence.IsOnline(username)
}
