package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateNormalMap(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		return errors.New("paths.watch_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WatchDir == c.Paths.OutputDir {
		return errors.New("paths.watch_dir and paths.output_dir must differ, otherwise outputs would be re-ingested")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.TargetWidth <= 0 || c.Processing.TargetHeight <= 0 {
		return errors.New("processing.target_width and processing.target_height must be positive")
	}
	if c.Processing.LODLevels < 1 {
		return errors.New("processing.lod_levels must be at least 1")
	}
	if c.Processing.MaxParallel < 1 || c.Processing.MaxParallel > MaxParallelLimit {
		return fmt.Errorf("processing.max_parallel must be between 1 and %d", MaxParallelLimit)
	}
	return nil
}

func (c *Config) validateNormalMap() error {
	if c.NormalMap.Strength <= 0 {
		return errors.New("normal_map.strength must be positive")
	}
	if c.NormalMap.BlurRadius < 0 {
		return errors.New("normal_map.blur_radius must not be negative")
	}
	if c.NormalMap.GradientThreshold < 0 || c.NormalMap.GradientThreshold >= 1 {
		return errors.New("normal_map.gradient_threshold must be in [0, 1)")
	}
	return nil
}

func (c *Config) validateSegmenter() error {
	if !c.Segmenter.Enabled {
		return nil
	}
	endpoint := strings.TrimSpace(c.Segmenter.Endpoint)
	if endpoint == "" {
		return errors.New("segmenter.endpoint must be set when segmenter.enabled is true")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return errors.New("segmenter.endpoint must be an http(s) URL")
	}
	return nil
}
