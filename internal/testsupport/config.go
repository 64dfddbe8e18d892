// Package testsupport provides shared helpers for package tests: temp-dir
// configs, history stores, and synthetic test images.
package testsupport

import (
	"path/filepath"
	"testing"

	"amberpipe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(base, "incoming")
	cfg.Paths.OutputDir = filepath.Join(base, "processed")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.HeaderDir = filepath.Join(base, "headers")
	cfg.Paths.CompiledDir = filepath.Join(base, "compiled")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "amberpiped.sock")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Segmenter.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSegmenter enables the segmentation service against the given endpoint.
func WithSegmenter(endpoint string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Segmenter.Enabled = true
		cfg.Segmenter.Endpoint = endpoint
		cfg.Segmenter.TimeoutSeconds = 5
	}
}

// WithTargetSize overrides the processing target dimensions.
func WithTargetSize(width, height int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.TargetWidth = width
		cfg.Processing.TargetHeight = height
	}
}

// WithMaxParallel overrides the concurrency bound.
func WithMaxParallel(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.MaxParallel = limit
	}
}
