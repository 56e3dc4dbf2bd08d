package game

import (
	"encoding/json"
	"sync"
)

// Rules is the per-gameType collaborator that owns game semantics. The
// coordinator never inspects state; it only passes it through.
type Rules interface {
	// InitialState returns the state a fresh session starts from. It
	// must be JSON-marshalable since it travels to clients verbatim.
	InitialState() interface{}

	// ApplyMove validates and applies a move for the given seat. It
	// returns the new state and, when the game is over, a non-nil
	// result. Illegal moves return an error wrapping ErrInvalidMove.
	ApplyMove(state interface{}, seat int, move json.RawMessage) (interface{}, *Result, error)
}

// TimeoutPolicy lets a ruleset override what running out of time means.
// Rulesets that do not implement it get the default: the expired player
// loses.
type TimeoutPolicy interface {
	TimeoutResult(state interface{}, seat int) *Result
}

// Registry maps gameType identifiers to their rule handlers.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rules
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rules)}
}

func (r *Registry) Register(gameType string, rules Rules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[gameType] = rules
}

func (r *Registry) Lookup(gameType string) (Rules, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules, ok := r.rules[gameType]
	return rules, ok
}
