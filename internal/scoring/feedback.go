package scoring

import "fmt"

// Supported feedback locales. Locale selection is a presentation concern; the
// core only needs a parameter with a baseline default.
const (
	LocaleEN = "en"
	LocaleES = "es"
)

const (
	msgCorrect         = "correct"
	msgIncorrect       = "incorrect"
	msgNoAnswer        = "no_answer"
	msgPenalty         = "penalty"
	msgPartialCredit   = "partial_credit"
	msgConfidenceBonus = "confidence_bonus"
	msgConfidenceLoss  = "confidence_loss"
	msgHumbleLoss      = "humble_loss"
	msgTimeBonus       = "time_bonus"
	msgDifficulty      = "difficulty"
	msgStreak          = "streak"
	msgBelowThreshold  = "below_threshold"
)

// catalog maps locale -> message key -> format string. Missing locales fall
// back to English rather than erroring.
var catalog = map[string]map[string]string{
	LocaleEN: {
		msgCorrect:         "Correct!",
		msgIncorrect:       "Incorrect.",
		msgNoAnswer:        "No answer selected.",
		msgPenalty:         "Incorrect: %.0f%% penalty applied.",
		msgPartialCredit:   "Partially correct: %.0f%% credit.",
		msgConfidenceBonus: "Correct with high confidence: points doubled!",
		msgConfidenceLoss:  "Incorrect with high confidence: doubled penalty.",
		msgHumbleLoss:      "Incorrect, but low confidence halved the penalty.",
		msgTimeBonus:       "Correct! Speed bonus: +%.1f points.",
		msgDifficulty:      "Correct at difficulty %d.",
		msgStreak:          "Correct! Streak multiplier x%.1f.",
		msgBelowThreshold:  "Score below the %.0f%% threshold: no points awarded.",
	},
	LocaleES: {
		msgCorrect:         "¡Correcto!",
		msgIncorrect:       "Incorrecto.",
		msgNoAnswer:        "Ninguna respuesta seleccionada.",
		msgPenalty:         "Incorrecto: penalización del %.0f%%.",
		msgPartialCredit:   "Parcialmente correcto: %.0f%% de crédito.",
		msgConfidenceBonus: "¡Correcto con alta confianza: puntos duplicados!",
		msgConfidenceLoss:  "Incorrecto con alta confianza: penalización duplicada.",
		msgHumbleLoss:      "Incorrecto, pero la baja confianza redujo la penalización a la mitad.",
		msgTimeBonus:       "¡Correcto! Bono de velocidad: +%.1f puntos.",
		msgDifficulty:      "Correcto en dificultad %d.",
		msgStreak:          "¡Correcto! Multiplicador de racha x%.1f.",
		msgBelowThreshold:  "Puntuación por debajo del umbral del %.0f%%: sin puntos.",
	},
}

func feedback(locale, key string, args ...any) string {
	msgs, ok := catalog[locale]
	if !ok {
		msgs = catalog[LocaleEN]
	}
	format, ok := msgs[key]
	if !ok {
		format = catalog[LocaleEN][key]
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
