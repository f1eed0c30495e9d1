package scoring

import "adaptive-quiz-service/internal/domain"

// Standard awards the question's full points on a correct answer and nothing
// otherwise. It is the registry's fallback policy.
type Standard struct{}

func (Standard) Name() string { return NameStandard }

func (Standard) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	if ctx.Answer.Correct {
		return domain.ScoringResult{
			PointsEarned:   points,
			PointsPossible: points,
			Percentage:     100,
			Feedback:       feedback(ctx.Locale, msgCorrect),
			Modifiers:      []string{TagFullCredit},
		}
	}
	return domain.ScoringResult{
		PointsPossible: points,
		Feedback:       feedback(ctx.Locale, msgIncorrect),
		Modifiers:      []string{TagIncorrect},
	}
}

// NegativePenalty subtracts a fraction of the question's points on a wrong
// answer. The reported percentage for an incorrect answer is -PenaltyPct, not
// earned/possible, so the penalty shows up as a distinct signed quantity.
type NegativePenalty struct {
	PenaltyPct float64
}

func NewNegativePenalty() NegativePenalty {
	return NegativePenalty{PenaltyPct: 25}
}

func (NegativePenalty) Name() string { return NameNegativePenalty }

func (p NegativePenalty) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	if ctx.Answer.Correct {
		return domain.ScoringResult{
			PointsEarned:   points,
			PointsPossible: points,
			Percentage:     100,
			Feedback:       feedback(ctx.Locale, msgCorrect),
			Modifiers:      []string{TagFullCredit},
		}
	}
	return domain.ScoringResult{
		PointsEarned:   -(points * p.PenaltyPct / 100),
		PointsPossible: points,
		Percentage:     -p.PenaltyPct,
		Feedback:       feedback(ctx.Locale, msgPenalty, p.PenaltyPct),
		Modifiers:      []string{TagPenalty},
	}
}

// PartialCredit inspects the selected option rather than just the correctness
// flag: distractors can carry a partial-credit percentage. An unresolvable
// option ID is the "no answer" terminal case, not a penalty.
type PartialCredit struct{}

func (PartialCredit) Name() string { return NamePartialCredit }

func (PartialCredit) Score(ctx Context) domain.ScoringResult {
	points := ctx.Question.BasePoints()
	opt, ok := ctx.Question.OptionByID(ctx.Answer.OptionID)
	if !ok {
		return domain.ScoringResult{
			Feedback:  feedback(ctx.Locale, msgNoAnswer),
			Modifiers: []string{},
		}
	}
	if opt.Correct {
		return domain.ScoringResult{
			PointsEarned:   points,
			PointsPossible: points,
			Percentage:     100,
			Feedback:       feedback(ctx.Locale, msgCorrect),
			Modifiers:      []string{TagFullCredit},
		}
	}
	if opt.PartialCreditPct > 0 {
		earned := points * opt.PartialCreditPct / 100
		return domain.ScoringResult{
			PointsEarned:   earned,
			PointsPossible: points,
			Percentage:     percentage(earned, points),
			Feedback:       feedback(ctx.Locale, msgPartialCredit, opt.PartialCreditPct),
			Modifiers:      []string{TagPartialCredit},
		}
	}
	return domain.ScoringResult{
		PointsPossible: points,
		Feedback:       feedback(ctx.Locale, msgIncorrect),
		Modifiers:      []string{TagIncorrect},
	}
}
