// Package adaptive decides which difficulty to target next and samples the
// eligible question pool.
package adaptive

import (
	"math/rand"

	"adaptive-quiz-service/internal/domain"
)

// Accuracy and streak bands that trigger a difficulty step. The raise and
// lower checks are evaluated independently, not as alternatives, so the bands
// can be widened later without changing control flow.
const (
	raiseAccuracy  = 80
	raiseStreak    = 3
	lowerAccuracy  = 50
	lowerStreak    = 3
	difficultyBand = 1
)

// Selector samples questions around a target difficulty. The random source is
// injected so tests can pin exact selections.
type Selector struct {
	rnd *rand.Rand
}

func New(src rand.Source) *Selector {
	return &Selector{rnd: rand.New(src)}
}

// NextDifficulty computes the difficulty to target for the next batch of
// questions. Strong recent performance steps the level up, a losing streak
// steps it down, anything else leaves it unchanged. The result is always
// clamped to [1,5].
func NextDifficulty(current int, metrics domain.PerformanceMetrics) int {
	current = domain.ClampDifficulty(current)
	target := current
	if metrics.RecentAccuracy > raiseAccuracy && metrics.ConsecutiveCorrect >= raiseStreak {
		target = domain.ClampDifficulty(current + 1)
	}
	if metrics.RecentAccuracy < lowerAccuracy && metrics.ConsecutiveIncorrect >= lowerStreak {
		target = domain.ClampDifficulty(current - 1)
	}
	return target
}

// SelectNext filters the pool to the ±1 band around the target difficulty and
// randomly samples up to count questions without replacement. Scarcity is not
// an error: a short or empty result is valid and the caller decides whether to
// widen the band.
func (s *Selector) SelectNext(pool []domain.Question, count int, metrics domain.PerformanceMetrics, currentDifficulty int) []domain.Question {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	target := NextDifficulty(currentDifficulty, metrics)
	eligible := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		level := domain.ClampDifficulty(q.Difficulty)
		if level >= target-difficultyBand && level <= target+difficultyBand {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	s.rnd.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if count < len(eligible) {
		eligible = eligible[:count]
	}
	return eligible
}
