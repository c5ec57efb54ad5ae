package session

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store keeps the most recently used sessions in memory.
type Store struct {
	cache *lru.Cache[string, *State]
}

// NewStore creates a store that evicts the least recently used session beyond capacity.
func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("session capacity must be positive, got %d", capacity)
	}
	cache, err := lru.New[string, *State](capacity)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Get returns the session with the given id, creating an idle one when absent.
func (s *Store) Get(id string) *State {
	if state, ok := s.cache.Get(id); ok {
		return state
	}
	state := NewState(id)
	// A concurrent Get may have stored one first; keep whichever won.
	if previous, ok, _ := s.cache.PeekOrAdd(id, state); ok {
		return previous
	}
	return state
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(id string) (*State, bool) {
	return s.cache.Get(id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}
