package scoring

import (
	"adaptive-quiz-service/internal/domain"
)

// Context bundles everything a policy may consult for one answer event.
// Metrics is optional; policies that need it degrade gracefully when nil.
type Context struct {
	Question domain.Question
	Answer   domain.Answer
	Metrics  *domain.PerformanceMetrics
	Locale   string
}

// Policy is one scoring algorithm. Implementations must be deterministic for
// identical input and must never panic on degenerate context values; anomalies
// resolve to sentinel results per the error-handling contract.
type Policy interface {
	Name() string
	Score(ctx Context) domain.ScoringResult
}

// Registered policy names.
const (
	NameStandard        = "standard"
	NameNegativePenalty = "negative_penalty"
	NamePartialCredit   = "partial_credit"
	NameConfidence      = "confidence"
	NameThreshold       = "threshold"
	NameTimeBased       = "time_based"
	NameAdaptive        = "adaptive_difficulty"
	NameComboStreak     = "combo_streak"
	NameComposite       = "composite"
)

// Modifier trace tags, in the order policies emit them.
const (
	TagFullCredit         = "full_credit"
	TagIncorrect          = "incorrect"
	TagPenalty            = "penalty"
	TagPartialCredit      = "partial_credit"
	TagConfidenceBonus    = "confidence_bonus"
	TagConfidencePenalty  = "confidence_penalty"
	TagConfidenceRelief   = "confidence_relief"
	TagTimeBonusFull      = "time_bonus_full"
	TagTimeBonusPartial   = "time_bonus_partial"
	TagDifficultyScaled   = "difficulty_scaled"
	TagPerformanceBoost   = "performance_boost"
	TagPerformanceDamp    = "performance_damp"
	TagStreakBonus        = "streak_bonus"
	TagThresholdPassed    = "threshold_passed"
	TagThresholdFailed    = "threshold_failed"
)

// percentage divides earned by possible on the 100 scale, guarding the
// pathological zero denominator instead of propagating NaN.
func percentage(earned, possible float64) float64 {
	if possible == 0 {
		return 0
	}
	return earned / possible * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
