package domain

import "time"

const (
	// MinDifficulty and MaxDifficulty bound the adaptive difficulty scale.
	MinDifficulty = 1
	MaxDifficulty = 5

	// DefaultConfidence is assumed when a submission carries no confidence rating.
	DefaultConfidence = 3
)

// Option represents a possible answer for a question. PartialCreditPct is only
// meaningful when Correct is false.
type Option struct {
	ID               string  `json:"id"`
	Text             string  `json:"text"`
	Correct          bool    `json:"correct"`
	PartialCreditPct float64 `json:"partialCreditPct,omitempty"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []Option `json:"options"`
	Points     float64  `json:"points"` // defaults to 1 if zero
	Difficulty int      `json:"difficulty"`
}

// BasePoints returns the full-credit baseline for the question.
func (q Question) BasePoints() float64 {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// OptionByID resolves one of the question's options, if present.
func (q Question) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Bank is a slice of the question catalog for one topic.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// QuestionByID resolves a question within the bank.
func (b Bank) QuestionByID(id string) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Validate enforces the ingestion invariants: non-negative points, difficulty
// inside [1,5], and exactly one correct option per question. The scoring engine
// itself stays permissive; malformed banks are rejected here, at load time.
func (b Bank) Validate() error {
	if len(b.Questions) == 0 {
		return ErrEmptyBank
	}
	for _, q := range b.Questions {
		if q.Points < 0 {
			return ErrInvalidQuestion
		}
		if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
			return ErrInvalidQuestion
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			return ErrInvalidQuestion
		}
	}
	return nil
}

// Answer is a single submission event. Correct is derived server-side from the
// selected option, never taken from the client. Confidence 0 means "not given"
// and is treated as DefaultConfidence. TimeSpentSec is nil when the client did
// not report elapsed time.
type Answer struct {
	QuestionID   string
	OptionID     string
	Correct      bool
	Confidence   int
	TimeSpentSec *float64
}

// EffectiveConfidence returns the confidence clamped to [1,5], defaulting when absent.
func (a Answer) EffectiveConfidence() int {
	if a.Confidence == 0 {
		return DefaultConfidence
	}
	return ClampConfidence(a.Confidence)
}

// ScoringResult is the outcome of applying one scoring policy to an answer.
type ScoringResult struct {
	PointsEarned   float64  `json:"pointsEarned"`
	PointsPossible float64  `json:"pointsPossible"`
	Percentage     float64  `json:"percentage"`
	Feedback       string   `json:"feedback"`
	Modifiers      []string `json:"modifiers,omitempty"`
}

// PerformanceMetrics is a read-only rolling snapshot of a user's recent results.
// The scoring and selection core consults it but never mutates it; the tracker
// in the app layer owns updates.
type PerformanceMetrics struct {
	RecentAccuracy       float64   `json:"recentAccuracy"` // percentage over the rolling window
	AvgResponseSec       float64   `json:"avgResponseSec"`
	ConsecutiveCorrect   int       `json:"consecutiveCorrect"`
	ConsecutiveIncorrect int       `json:"consecutiveIncorrect"`
	StreakDays           int       `json:"streakDays"`
	WindowSize           int       `json:"windowSize"`
	LastAnsweredAt       time.Time `json:"lastAnsweredAt"`
}

// UserState is the persisted adaptive state for one user: the rolling metrics
// snapshot plus the difficulty level the selector should start from.
type UserState struct {
	Metrics    PerformanceMetrics `json:"metrics"`
	Difficulty int                `json:"difficulty"`
}

// StartingDifficulty returns the stored difficulty, defaulting to the middle
// of the scale for new users.
func (s UserState) StartingDifficulty() int {
	if s.Difficulty == 0 {
		return 3
	}
	return ClampDifficulty(s.Difficulty)
}

// LeaderboardEntry is one row of a bank's scoreboard.
type LeaderboardEntry struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}

// ClampDifficulty forces a difficulty level into [1,5]. Out-of-range values are
// clamped rather than rejected since difficulty is a derived quantity that can
// drift from external miscomputation.
func ClampDifficulty(level int) int {
	if level < MinDifficulty {
		return MinDifficulty
	}
	if level > MaxDifficulty {
		return MaxDifficulty
	}
	return level
}

// ClampConfidence forces a confidence rating into [1,5].
func ClampConfidence(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}
