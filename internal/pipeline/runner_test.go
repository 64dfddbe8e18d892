package pipeline_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"amberpipe/internal/history"
	"amberpipe/internal/naming"
	"amberpipe/internal/pipeline"
	"amberpipe/internal/segment"
	"amberpipe/internal/testsupport"
)

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("unexpected artifact %s", path)
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("missing artifact %s: %v", path, err)
	}
}

func TestRunCharacterPlanWithUnavailableSegmenter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(64, 64))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	res := naming.NewResolver(nil).Resolve("CHR_Knight_Idle_v01.png")
	sprite := testsupport.SpriteImage(128, 128, image.Rect(40, 20, 90, 100), color.NRGBA{R: 220, A: 255})
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, sprite, artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(result.Outcomes))
	}
	if result.Outcomes[0].Step != "segment" || result.Outcomes[0].Status != history.OutcomeFailed {
		t.Fatalf("segment outcome = %+v, want failed", result.Outcomes[0])
	}
	for _, outcome := range result.Outcomes[1:] {
		if outcome.Status != history.OutcomeCompleted {
			t.Fatalf("outcome %+v, want completed", outcome)
		}
	}

	// No plan step resized, so the fallback kicks in.
	if result.ResizedPath == "" {
		t.Fatal("expected fallback resize artifact")
	}
	mustExist(t, result.ResizedPath)
	mustExist(t, result.ProcessedPath)
	if result.Final.Bounds().Dx() != 64 || result.Final.Bounds().Dy() != 64 {
		t.Fatalf("final bounds = %v, want 64x64", result.Final.Bounds())
	}
}

func TestRunIconPlanSkipsFallbackResize(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(64, 64))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	res := naming.NewResolver(nil).Resolve("UI_Button_Hover.png")
	img := testsupport.GradientImage(100, 80)
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, img, artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ResizedPath != "" {
		t.Fatalf("fallback resize ran despite resize_square: %s", result.ResizedPath)
	}
	mustNotExist(t, filepath.Join(cfg.Paths.OutputDir, "UI_Button_Hover_64x64.png"))
	if result.Final.Bounds().Dx() != 64 || result.Final.Bounds().Dy() != 64 {
		t.Fatalf("final bounds = %v, want 64x64", result.Final.Bounds())
	}
}

func TestRunEnvironmentPlanWritesNormalAndLODs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(64, 64))
	cfg.Processing.LODLevels = 3
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	res := naming.NewResolver(nil).Resolve("ENV_Grass_Tile_BC.png")
	img := testsupport.GradientImage(128, 128)
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, img, artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, outcome := range result.Outcomes {
		if outcome.Status != history.OutcomeCompleted {
			t.Fatalf("outcome %+v, want completed", outcome)
		}
	}

	mustExist(t, filepath.Join(cfg.Paths.OutputDir, "ENV_Grass_Tile_BC_normal.png"))
	for i := 0; i < 3; i++ {
		mustExist(t, filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("ENV_Grass_Tile_BC_lod%d.png", i)))
	}
}

func TestRunPropPlanRecordsCollisionBounds(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(64, 64))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	res := naming.NewResolver(nil).Resolve("PRP_Barrel.png")
	sprite := testsupport.SpriteImage(96, 96, image.Rect(20, 10, 70, 80), color.NRGBA{G: 180, A: 255})
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, sprite, artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var collision *history.StepOutcome
	for i := range result.Outcomes {
		if result.Outcomes[i].Step == "box_collision" {
			collision = &result.Outcomes[i]
		}
	}
	if collision == nil {
		t.Fatalf("no box_collision outcome in %+v", result.Outcomes)
	}
	want := map[string]any{"x": 20, "y": 10, "width": 50, "height": 70}
	for key, value := range want {
		if collision.Details[key] != value {
			t.Fatalf("details[%s] = %v, want %v (all: %+v)", key, collision.Details[key], value, collision.Details)
		}
	}
}

func TestRunUnknownStepIsSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(32, 32))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	resolver := naming.NewResolver(map[string]naming.Rule{
		"XTR": {Steps: []naming.Step{naming.Step("bogus_step"), naming.StepSharpen}, Category: "Custom"},
	})
	res := resolver.Resolve("XTR_Thing.png")
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, testsupport.GradientImage(48, 48), artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].Step != "sharpen" {
		t.Fatalf("outcomes = %+v, want only sharpen", result.Outcomes)
	}
}

func TestRunDefaultPlanForUnknownPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargetSize(40, 40))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	registry := pipeline.NewRegistry(cfg, segment.NewHTTP(cfg.Segmenter))
	runner := pipeline.NewRunner(cfg, registry, nil)

	res := naming.NewResolver(nil).Resolve("XYZ_Mystery.png")
	if res.Category != "Unknown" {
		t.Fatalf("category = %s, want Unknown", res.Category)
	}
	artifacts := pipeline.NewArtifacts(cfg.Paths.OutputDir, res.Descriptor)

	result, err := runner.Run(context.Background(), res, testsupport.GradientImage(100, 100), artifacts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].Step != "default_process" {
		t.Fatalf("outcomes = %+v", result.Outcomes)
	}
	// default_process already resizes, so no dimension-named artifact.
	if result.ResizedPath != "" {
		t.Fatalf("unexpected fallback artifact %s", result.ResizedPath)
	}
	if result.Final.Bounds().Dx() != 40 {
		t.Fatalf("final width = %d, want 40", result.Final.Bounds().Dx())
	}
}
