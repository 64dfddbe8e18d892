package testsupport

import (
	"context"
	"testing"

	"amberpipe/internal/config"
	"amberpipe/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a queued run for tests using the provided store.
func NewRun(t testing.TB, store *history.Store, filename string) *history.Run {
	t.Helper()

	run, err := store.NewRun(context.Background(), filename)
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return run
}
