package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"adaptive-quiz-service/internal/app"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)

	attempt := app.NewAttemptWithClock("a1", "u1", "bank-1", "standard", nil, time.Now)
	store.Put(attempt)
	if !mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, ok := store.Get("a1"); !ok || got.ID() != "a1" {
		t.Fatalf("expected attempt retrievable")
	}

	store.Delete("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
}
