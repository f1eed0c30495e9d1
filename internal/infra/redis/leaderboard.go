package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"adaptive-quiz-service/internal/domain"
)

// Leaderboard accumulates scored points in a sorted set per bank:
//
//	ZINCRBY leaderboard:{bankID} {points} {userID}
//
// Penalty policies can push a user's total negative; ZINCRBY handles the
// signed increments natively.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) AddScore(ctx context.Context, bankID, userID string, points float64) error {
	if err := l.client.ZIncrBy(ctx, l.key(bankID), points, userID).Err(); err != nil {
		return fmt.Errorf("leaderboard incr: %w", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, bankID string, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.client.ZRevRangeWithScores(ctx, l.key(bankID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		userID, _ := row.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Score: row.Score})
	}
	return entries, nil
}

func (l *Leaderboard) key(bankID string) string {
	return "leaderboard:" + bankID
}
