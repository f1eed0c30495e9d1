package app

import (
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func TestTrackerFirstAnswer(t *testing.T) {
	tracker := NewMetricsTrackerWithClock(20, func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })

	m := tracker.Apply(domain.PerformanceMetrics{}, true, nil)
	if m.RecentAccuracy != 100 {
		t.Fatalf("expected 100%% after one correct answer, got %v", m.RecentAccuracy)
	}
	if m.ConsecutiveCorrect != 1 || m.ConsecutiveIncorrect != 0 {
		t.Fatalf("unexpected streaks %+v", m)
	}
	if m.StreakDays != 1 {
		t.Fatalf("expected streak started at 1, got %d", m.StreakDays)
	}
}

func TestTrackerRollingAccuracy(t *testing.T) {
	tracker := NewMetricsTrackerWithClock(4, time.Now)

	var m domain.PerformanceMetrics
	m = tracker.Apply(m, true, nil)  // 100
	m = tracker.Apply(m, true, nil)  // 100
	m = tracker.Apply(m, false, nil) // (100*2+0)/3 ≈ 66.7
	if m.RecentAccuracy < 66 || m.RecentAccuracy > 67 {
		t.Fatalf("expected ~66.7%%, got %v", m.RecentAccuracy)
	}
	if m.WindowSize != 3 {
		t.Fatalf("expected window 3, got %d", m.WindowSize)
	}

	// The window caps, so old answers lose influence instead of accumulating.
	for i := 0; i < 10; i++ {
		m = tracker.Apply(m, true, nil)
	}
	if m.WindowSize != 4 {
		t.Fatalf("expected capped window 4, got %d", m.WindowSize)
	}
	if m.RecentAccuracy < 90 {
		t.Fatalf("expected accuracy to recover above 90%%, got %v", m.RecentAccuracy)
	}
}

func TestTrackerStreakReset(t *testing.T) {
	tracker := NewMetricsTrackerWithClock(20, time.Now)

	var m domain.PerformanceMetrics
	m = tracker.Apply(m, true, nil)
	m = tracker.Apply(m, true, nil)
	if m.ConsecutiveCorrect != 2 {
		t.Fatalf("expected streak 2, got %d", m.ConsecutiveCorrect)
	}
	m = tracker.Apply(m, false, nil)
	if m.ConsecutiveCorrect != 0 || m.ConsecutiveIncorrect != 1 {
		t.Fatalf("expected streak flip, got %+v", m)
	}
}

func TestTrackerAverageResponseTime(t *testing.T) {
	tracker := NewMetricsTrackerWithClock(20, time.Now)

	ten := 10.0
	twenty := 20.0
	var m domain.PerformanceMetrics
	m = tracker.Apply(m, true, &ten)
	m = tracker.Apply(m, true, &twenty)
	if m.AvgResponseSec != 15 {
		t.Fatalf("expected mean 15s, got %v", m.AvgResponseSec)
	}
	// Missing time leaves the average untouched.
	m = tracker.Apply(m, true, nil)
	if m.AvgResponseSec != 15 {
		t.Fatalf("expected average unchanged without time, got %v", m.AvgResponseSec)
	}
}

func TestTrackerDailyStreak(t *testing.T) {
	day := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := day
	tracker := NewMetricsTrackerWithClock(20, func() time.Time { return now })

	var m domain.PerformanceMetrics
	m = tracker.Apply(m, true, nil)
	if m.StreakDays != 1 {
		t.Fatalf("expected day 1, got %d", m.StreakDays)
	}

	// Same day: streak holds.
	now = day.Add(4 * time.Hour)
	m = tracker.Apply(m, true, nil)
	if m.StreakDays != 1 {
		t.Fatalf("expected same-day streak 1, got %d", m.StreakDays)
	}

	// Next day: streak extends.
	now = day.Add(24 * time.Hour)
	m = tracker.Apply(m, false, nil)
	if m.StreakDays != 2 {
		t.Fatalf("expected streak 2, got %d", m.StreakDays)
	}

	// Two-day gap: streak resets.
	now = day.Add(3 * 24 * time.Hour)
	m = tracker.Apply(m, true, nil)
	if m.StreakDays != 1 {
		t.Fatalf("expected streak reset to 1, got %d", m.StreakDays)
	}
}
