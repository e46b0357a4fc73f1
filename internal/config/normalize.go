package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeContent()
	c.normalizeGeneration()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AssetRoot, err = expandPath(c.Paths.AssetRoot); err != nil {
		return fmt.Errorf("paths.asset_root: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.Format = strings.ToLower(strings.TrimSpace(c.Video.Format))
	if c.Video.Format == "" {
		c.Video.Format = FormatShort
	}
	c.Video.Transitions.Default = strings.ToLower(strings.TrimSpace(c.Video.Transitions.Default))
	if c.Video.Transitions.Default == "" {
		c.Video.Transitions.Default = defaultTransition
	}
	c.Video.Captions.Font = strings.TrimSpace(c.Video.Captions.Font)
	if c.Video.Captions.Font == "" {
		c.Video.Captions.Font = defaultCaptionFont
	}
	c.Video.Captions.Color = strings.TrimSpace(c.Video.Captions.Color)
	if c.Video.Captions.Color == "" {
		c.Video.Captions.Color = defaultCaptionColor
	}
	c.Video.Captions.StrokeColor = strings.TrimSpace(c.Video.Captions.StrokeColor)
	if c.Video.Captions.StrokeColor == "" {
		c.Video.Captions.StrokeColor = defaultCaptionStrokeColor
	}
}

func (c *Config) normalizeContent() {
	if c.Content.Captions.ChunkSize <= 0 {
		c.Content.Captions.ChunkSize = defaultCaptionChunkSize
	}
	if c.Content.Music.DurationBuffer < 0 {
		c.Content.Music.DurationBuffer = 0
	}
}

func (c *Config) normalizeGeneration() {
	c.Generation.Command = strings.TrimSpace(c.Generation.Command)
	if c.Generation.MaxConcurrentTasks <= 0 {
		c.Generation.MaxConcurrentTasks = defaultMaxConcurrentTasks
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = defaultGenerationTimeoutSeconds
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.DurationToleranceMS <= 0 {
		c.Workflow.DurationToleranceMS = defaultDurationToleranceMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
