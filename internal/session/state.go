// Package session keeps the per-user search state between requests.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
)

// Phase is the position of a session in the search lifecycle.
type Phase string

// Session phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseResult    Phase = "result"
	PhaseError     Phase = "error"
)

// Result is an immutable completed search.
type Result struct {
	RunID        uuid.UUID
	Query        string
	BusinessType string
	City         string
	Country      string
	Table        entity.ResultTable
	Payloads     export.Payloads
	CompletedAt  time.Time
}

// Snapshot is a consistent copy of a session taken under its lock.
type Snapshot struct {
	ID        string
	Phase     Phase
	Query     string
	Err       error
	Result    *Result
	UpdatedAt time.Time
}

// State holds one user's search state. Results are replaced, never mutated.
type State struct {
	mu         sync.RWMutex
	id         string
	phase      Phase
	query      string
	err        error
	result     *Result
	generation uint64
	updatedAt  time.Time
	now        func() time.Time
}

// NewState returns an idle session.
func NewState(id string) *State {
	return &State{id: id, phase: PhaseIdle, now: time.Now, updatedAt: time.Now()}
}

// ID returns the session identifier.
func (s *State) ID() string {
	return s.id
}

// Begin records a new submission and returns its generation.
// Only the latest generation may complete the session.
func (s *State) Begin(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.phase = PhaseSearching
	s.query = query
	s.err = nil
	s.updatedAt = s.now()
	return s.generation
}

// Complete publishes the result of the given submission.
// It reports false when a newer submission superseded it.
func (s *State) Complete(generation uint64, result *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.phase = PhaseResult
	s.result = result
	s.err = nil
	s.updatedAt = s.now()
	return true
}

// Fail records the error of the given submission. The previous result stays available.
func (s *State) Fail(generation uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.phase = PhaseError
	s.err = err
	s.updatedAt = s.now()
	return true
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:        s.id,
		Phase:     s.phase,
		Query:     s.query,
		Err:       s.err,
		Result:    s.result,
		UpdatedAt: s.updatedAt,
	}
}

// Payload returns the download of the current result in the given format.
func (s *State) Payload(format export.Format) (export.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return export.Payload{}, false
	}
	return s.result.Payloads.Get(format)
}
