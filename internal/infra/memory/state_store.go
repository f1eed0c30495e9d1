package memory

import (
	"context"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// StateStore keeps per-user adaptive state in process memory. A user without
// stored state gets a zero value, not an error.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]domain.UserState
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]domain.UserState)}
}

func (s *StateStore) Get(_ context.Context, userID string) (domain.UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[userID], nil
}

func (s *StateStore) Put(_ context.Context, userID string, state domain.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}
