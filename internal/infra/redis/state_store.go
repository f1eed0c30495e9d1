package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"adaptive-quiz-service/internal/domain"
)

// StateStore persists per-user adaptive state as JSON under user:{id}:state.
// A missing key yields a zero state, not an error, so new users start fresh.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Get(ctx context.Context, userID string) (domain.UserState, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserState{}, nil
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("load user state: %w", err)
	}
	var state domain.UserState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.UserState{}, fmt.Errorf("unmarshal user state: %w", err)
	}
	return state, nil
}

func (s *StateStore) Put(ctx context.Context, userID string, state domain.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("store user state: %w", err)
	}
	return nil
}

func (s *StateStore) key(userID string) string {
	return "user:" + userID + ":state"
}
