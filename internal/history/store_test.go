package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"amberpipe/internal/history"
	"amberpipe/internal/testsupport"
)

func TestNewRunAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run, err := store.NewRun(ctx, "CHR_Knight_v01.png")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run id is empty")
	}
	if run.Status != history.StatusQueued {
		t.Fatalf("status = %s, want queued", run.Status)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "CHR_Knight_v01.png" {
		t.Fatalf("filename = %s", got.Filename)
	}
	if len(got.Outcomes) != 0 {
		t.Fatalf("fresh run has %d outcomes", len(got.Outcomes))
	}
}

func TestUpdatePersistsOutcomes(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run := testsupport.NewRun(t, store, "UI_Button.png")
	now := time.Now().UTC()
	run.Status = history.StatusCompleted
	run.Category = "Icon"
	run.FinishedAt = &now
	run.Outcomes = []history.StepOutcome{
		{Step: "segment", Status: history.OutcomeFailed, Error: "segmentation service unavailable"},
		{Step: "resize_square", Status: history.OutcomeCompleted, Details: map[string]any{"width": 512, "height": 512}},
	}
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != history.StatusCompleted || got.Category != "Icon" {
		t.Fatalf("got status=%s category=%s", got.Status, got.Category)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished_at not persisted")
	}
	if len(got.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(got.Outcomes))
	}
	if got.Outcomes[0].Status != history.OutcomeFailed || got.Outcomes[0].Error == "" {
		t.Fatalf("first outcome = %+v", got.Outcomes[0])
	}
	// JSON round trips numeric detail values as float64.
	if got.Outcomes[1].Details["width"] != float64(512) {
		t.Fatalf("details = %+v", got.Outcomes[1].Details)
	}
	if got.Succeeded() {
		t.Fatal("run with a failed step must not count as succeeded")
	}
}

func TestUpdateUnknownRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	run := &history.Run{ID: "missing", Status: history.StatusFailed}
	if err := store.Update(context.Background(), run); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	completed := testsupport.NewRun(t, store, "a.png")
	completed.Status = history.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("update: %v", err)
	}
	failed := testsupport.NewRun(t, store, "b.png")
	failed.Status = history.StatusFailed
	failed.ErrorMessage = "load image b.png: no such file"
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("update: %v", err)
	}
	testsupport.NewRun(t, store, "c.png")

	runs, err := store.List(ctx, history.StatusFailed)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].Filename != "b.png" {
		t.Fatalf("filtered list = %+v", runs)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all = %d runs, want 3", len(all))
	}
}

func TestStatsAndClearFinished(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := testsupport.NewRun(t, store, "ok.png")
		run.Status = history.StatusCompleted
		if err := store.Update(ctx, run); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	bad := testsupport.NewRun(t, store, "bad.png")
	bad.Status = history.StatusFailed
	if err := store.Update(ctx, bad); err != nil {
		t.Fatalf("update: %v", err)
	}
	testsupport.NewRun(t, store, "pending.png")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 5 || stats.Completed != 3 || stats.Failed != 1 || stats.Queued != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if rate := stats.SuccessRate(); rate != 0.75 {
		t.Fatalf("success rate = %v, want 0.75", rate)
	}

	removed, err := store.ClearFinished(ctx)
	if err != nil {
		t.Fatalf("clear finished: %v", err)
	}
	if removed != 4 {
		t.Fatalf("removed = %d, want 4", removed)
	}
	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Status != history.StatusQueued {
		t.Fatalf("remaining = %+v", remaining)
	}
}
