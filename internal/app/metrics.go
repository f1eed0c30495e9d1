package app

import (
	"time"

	"adaptive-quiz-service/internal/domain"
)

// defaultWindow is the number of recent answers the rolling accuracy tracks.
const defaultWindow = 20

// MetricsTracker folds answer outcomes into the rolling PerformanceMetrics
// snapshot. The scoring and selection core only ever reads the snapshot; this
// is the collaborator that writes it.
type MetricsTracker struct {
	window int
	now    func() time.Time
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{window: defaultWindow, now: time.Now}
}

// NewMetricsTrackerWithClock is test-only for deterministic streak dates.
func NewMetricsTrackerWithClock(window int, now func() time.Time) *MetricsTracker {
	if window <= 0 {
		window = defaultWindow
	}
	return &MetricsTracker{window: window, now: now}
}

// Apply returns the metrics updated with one answer outcome. Accuracy and
// average response time are incremental means over a capped window, so old
// answers age out of influence without storing per-answer history.
func (t *MetricsTracker) Apply(m domain.PerformanceMetrics, correct bool, timeSpentSec *float64) domain.PerformanceMetrics {
	n := m.WindowSize + 1
	if n > t.window {
		n = t.window
	}

	outcome := 0.0
	if correct {
		outcome = 100
	}
	m.RecentAccuracy += (outcome - m.RecentAccuracy) / float64(n)

	if timeSpentSec != nil && *timeSpentSec >= 0 {
		m.AvgResponseSec += (*timeSpentSec - m.AvgResponseSec) / float64(n)
	}

	if correct {
		m.ConsecutiveCorrect++
		m.ConsecutiveIncorrect = 0
	} else {
		m.ConsecutiveIncorrect++
		m.ConsecutiveCorrect = 0
	}

	now := t.now()
	m.StreakDays = nextStreak(m.StreakDays, m.LastAnsweredAt, now)
	m.LastAnsweredAt = now
	m.WindowSize = n
	return m
}

// nextStreak extends the daily streak when the previous answer was yesterday,
// keeps it on the same day, and resets it after a gap.
func nextStreak(streak int, last, now time.Time) int {
	if last.IsZero() {
		return 1
	}
	lastDay := last.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	switch today.Sub(lastDay) {
	case 0:
		if streak == 0 {
			return 1
		}
		return streak
	case 24 * time.Hour:
		return streak + 1
	default:
		return 1
	}
}
