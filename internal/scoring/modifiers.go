package scoring

import "adaptive-quiz-service/internal/domain"

// ConfidenceBased scales reward and penalty by the self-reported confidence
// rating. High confidence doubles both the upside and the downside; low
// confidence on a wrong answer halves the base penalty. The possible value is
// scaled by the multiplier only on a correct high-confidence answer, keeping
// the percentage anchored at the 100 scale.
type ConfidenceBased struct {
	HighThreshold  int
	HighMultiplier float64
	BasePenaltyPct float64
}

func NewConfidenceBased() ConfidenceBased {
	return ConfidenceBased{HighThreshold: 4, HighMultiplier: 2.0, BasePenaltyPct: 25}
}

func (ConfidenceBased) Name() string { return NameConfidence }

func (p ConfidenceBased) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	high := ctx.Answer.EffectiveConfidence() >= p.HighThreshold

	var res domain.ScoringResult
	switch {
	case ctx.Answer.Correct && high:
		res = domain.ScoringResult{
			PointsEarned:   points * p.HighMultiplier,
			PointsPossible: points * p.HighMultiplier,
			Feedback:       feedback(ctx.Locale, msgConfidenceBonus),
			Modifiers:      []string{TagFullCredit, TagConfidenceBonus},
		}
	case ctx.Answer.Correct:
		res = domain.ScoringResult{
			PointsEarned:   points,
			PointsPossible: points,
			Feedback:       feedback(ctx.Locale, msgCorrect),
			Modifiers:      []string{TagFullCredit},
		}
	case high:
		res = domain.ScoringResult{
			PointsEarned:   -(points * p.BasePenaltyPct / 100) * p.HighMultiplier,
			PointsPossible: points,
			Feedback:       feedback(ctx.Locale, msgConfidenceLoss),
			Modifiers:      []string{TagPenalty, TagConfidencePenalty},
		}
	default:
		res = domain.ScoringResult{
			PointsEarned:   -(points * p.BasePenaltyPct / 100) * 0.5,
			PointsPossible: points,
			Feedback:       feedback(ctx.Locale, msgHumbleLoss),
			Modifiers:      []string{TagPenalty, TagConfidenceRelief},
		}
	}
	res.Percentage = clamp(percentage(res.PointsEarned, res.PointsPossible), -100, 100)
	return res
}

// TimeBased grants a speed bonus on correct answers, decaying linearly from
// full at FastSec to nothing at SlowSec. The denominator is fixed at
// points*(1+MaxBonusFrac) regardless of outcome. Answers without a reported
// elapsed time earn no bonus.
type TimeBased struct {
	FastSec      float64
	SlowSec      float64
	MaxBonusFrac float64
}

func NewTimeBased() TimeBased {
	return TimeBased{FastSec: 10, SlowSec: 60, MaxBonusFrac: 0.5}
}

func (TimeBased) Name() string { return NameTimeBased }

func (p TimeBased) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	possible := points * (1 + p.MaxBonusFrac)

	if !ctx.Answer.Correct {
		return domain.ScoringResult{
			PointsPossible: possible,
			Feedback:       feedback(ctx.Locale, msgIncorrect),
			Modifiers:      []string{TagIncorrect},
		}
	}

	bonus := 0.0
	tag := ""
	if ctx.Answer.TimeSpentSec != nil {
		t := *ctx.Answer.TimeSpentSec
		switch {
		case t <= p.FastSec:
			bonus = points * p.MaxBonusFrac
			tag = TagTimeBonusFull
		case t < p.SlowSec:
			ratio := 1 - (t-p.FastSec)/(p.SlowSec-p.FastSec)
			bonus = points * p.MaxBonusFrac * ratio
			tag = TagTimeBonusPartial
		}
	}

	earned := points + bonus
	mods := []string{TagFullCredit}
	fb := feedback(ctx.Locale, msgCorrect)
	if tag != "" {
		mods = append(mods, tag)
		fb = feedback(ctx.Locale, msgTimeBonus, bonus)
	}
	return domain.ScoringResult{
		PointsEarned:   earned,
		PointsPossible: possible,
		Percentage:     clamp(percentage(earned, possible), 0, 100+p.MaxBonusFrac*100),
		Feedback:       fb,
		Modifiers:      mods,
	}
}

// AdaptiveDifficulty weights points by the question's difficulty level and by
// the user's recent accuracy: strugglers get a 20% boost, users above 90%
// accuracy a 10% damp. The reported percentage stays binary; the multipliers
// move absolute points only.
type AdaptiveDifficulty struct{}

func (AdaptiveDifficulty) Name() string { return NameAdaptive }

func (AdaptiveDifficulty) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	level := domain.ClampDifficulty(ctx.Question.Difficulty)
	difficultyMult := 1 + float64(level-1)*0.25

	performanceMult := 1.0
	perfTag := ""
	if m := ctx.Metrics; m != nil {
		if m.RecentAccuracy < 60 {
			performanceMult = 1.2
			perfTag = TagPerformanceBoost
		} else if m.RecentAccuracy > 90 {
			performanceMult = 0.9
			perfTag = TagPerformanceDamp
		}
	}

	adjusted := points * difficultyMult * performanceMult
	if !ctx.Answer.Correct {
		return domain.ScoringResult{
			PointsPossible: adjusted,
			Feedback:       feedback(ctx.Locale, msgIncorrect),
			Modifiers:      []string{TagIncorrect},
		}
	}
	mods := []string{TagFullCredit, TagDifficultyScaled}
	if perfTag != "" {
		mods = append(mods, perfTag)
	}
	return domain.ScoringResult{
		PointsEarned:   adjusted,
		PointsPossible: adjusted,
		Percentage:     100,
		Feedback:       feedback(ctx.Locale, msgDifficulty, level),
		Modifiers:      mods,
	}
}

// ComboStreak multiplies points by the streak carried into this answer, capped
// at MaxMultiplier. ConsecutiveCorrect reflects the streak before the current
// answer; the tracker updates it afterwards.
type ComboStreak struct {
	BonusPerCorrect float64
	MaxMultiplier   float64
}

func NewComboStreak() ComboStreak {
	return ComboStreak{BonusPerCorrect: 0.1, MaxMultiplier: 2.0}
}

func (ComboStreak) Name() string { return NameComboStreak }

func (p ComboStreak) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	streak := 0
	if ctx.Metrics != nil {
		streak = ctx.Metrics.ConsecutiveCorrect
	}
	mult := 1 + float64(streak)*p.BonusPerCorrect
	if mult > p.MaxMultiplier {
		mult = p.MaxMultiplier
	}

	possible := points * mult
	if !ctx.Answer.Correct {
		return domain.ScoringResult{
			PointsPossible: possible,
			Feedback:       feedback(ctx.Locale, msgIncorrect),
			Modifiers:      []string{TagIncorrect},
		}
	}
	mods := []string{TagFullCredit}
	fb := feedback(ctx.Locale, msgCorrect)
	if mult > 1 {
		mods = append(mods, TagStreakBonus)
		fb = feedback(ctx.Locale, msgStreak, mult)
	}
	return domain.ScoringResult{
		PointsEarned:   possible,
		PointsPossible: possible,
		Percentage:     100,
		Feedback:       fb,
		Modifiers:      mods,
	}
}
