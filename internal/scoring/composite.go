package scoring

import (
	"strings"

	"adaptive-quiz-service/internal/domain"
)

// Threshold decorates another policy: results whose percentage falls below
// MinPct have their earned points and percentage zeroed out. The wrapped
// result passes through unchanged otherwise, plus a trace tag either way.
type Threshold struct {
	MinPct  float64
	Wrapped Policy
}

func NewThreshold() Threshold {
	return Threshold{MinPct: 40, Wrapped: Standard{}}
}

func (Threshold) Name() string { return NameThreshold }

func (p Threshold) Score(ctx Context) domain.ScoringResult {
	inner := p.Wrapped.Score(ctx)
	if inner.Percentage < p.MinPct {
		inner.PointsEarned = 0
		inner.Percentage = 0
		inner.Feedback = feedback(ctx.Locale, msgBelowThreshold, p.MinPct)
		inner.Modifiers = append(inner.Modifiers, TagThresholdFailed)
		return inner
	}
	inner.Modifiers = append(inner.Modifiers, TagThresholdPassed)
	return inner
}

// Composite applies every listed policy to the same context independently and
// sums the results, so independent bonuses layer instead of excluding each
// other. A zero total denominator resolves to 0 percent.
type Composite struct {
	Policies []Policy
}

func NewComposite(policies ...Policy) Composite {
	return Composite{Policies: policies}
}

func (Composite) Name() string { return NameComposite }

func (p Composite) Score(ctx Context) domain.ScoringResult {
	var (
		earned   float64
		possible float64
		mods     []string
		feedbacks []string
	)
	for _, policy := range p.Policies {
		res := policy.Score(ctx)
		earned += res.PointsEarned
		possible += res.PointsPossible
		mods = append(mods, res.Modifiers...)
		if res.Feedback != "" {
			feedbacks = append(feedbacks, res.Feedback)
		}
	}
	return domain.ScoringResult{
		PointsEarned:   earned,
		PointsPossible: possible,
		Percentage:     percentage(earned, possible),
		Feedback:       strings.Join(feedbacks, " "),
		Modifiers:      mods,
	}
}
