package config

import "strings"

// normalize expands user paths and fills empty fields with defaults so
// downstream code never has to re-check for blanks.
func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.WatchDir,
		&c.Paths.OutputDir,
		&c.Paths.StagingDir,
		&c.Paths.HeaderDir,
		&c.Paths.CompiledDir,
		&c.Paths.LogDir,
		&c.Paths.SocketPath,
	}
	for _, p := range paths {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Workflow.RescanInterval <= 0 {
		c.Workflow.RescanInterval = defaultRescanInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.StopTimeout <= 0 {
		c.Workflow.StopTimeout = defaultStopTimeout
	}
	if c.Segmenter.TimeoutSeconds <= 0 {
		c.Segmenter.TimeoutSeconds = defaultSegmenterTimeout
	}
	c.Segmenter.Endpoint = strings.TrimRight(strings.TrimSpace(c.Segmenter.Endpoint), "/")
	return nil
}
