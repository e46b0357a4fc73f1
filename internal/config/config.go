package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	AssetRoot  string `toml:"asset_root"`
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Dimensions describes an output frame size.
type Dimensions struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Transitions configures the boundary effect between consecutive scene clips.
type Transitions struct {
	Default  string  `toml:"default"`
	Duration float64 `toml:"duration"`
}

// CaptionStyle configures burned-in caption rendering.
type CaptionStyle struct {
	Font        string `toml:"font"`
	Size        int    `toml:"size"`
	Color       string `toml:"color"`
	StrokeColor string `toml:"stroke_color"`
	StrokeWidth int    `toml:"stroke_width"`
}

// Video contains render geometry and styling.
type Video struct {
	FPS         int          `toml:"fps"`
	Format      string       `toml:"format"`
	ShortForm   Dimensions   `toml:"short_form"`
	LongForm    Dimensions   `toml:"long_form"`
	Transitions Transitions  `toml:"transitions"`
	Captions    CaptionStyle `toml:"captions"`
}

// Music configures background music mixing.
type Music struct {
	Volume         float64 `toml:"volume"`
	DurationBuffer float64 `toml:"duration_buffer"`
	Required       bool    `toml:"required"`
}

// ContentCaptions toggles caption synthesis.
type ContentCaptions struct {
	Enabled   bool `toml:"enabled"`
	ChunkSize int  `toml:"chunk_size"`
}

// Content groups content-level policy.
type Content struct {
	Music    Music           `toml:"music"`
	Captions ContentCaptions `toml:"captions"`
}

// Generation configures the external asset generator hook used in live mode.
type Generation struct {
	Command            string `toml:"command"`
	MaxConcurrentTasks int    `toml:"max_concurrent_tasks"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// Workflow contains pipeline tuning knobs.
type Workflow struct {
	DurationToleranceMS int `toml:"duration_tolerance_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: asset root, staging, output, and log directories
//   - Video: fps, output format, frame geometry, transitions, caption styling
//   - Content: background music mixing policy and caption synthesis toggles
//   - Generation: external generator hook for live mode
//   - Workflow: duration clamp tolerance
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Video      Video      `toml:"video"`
	Content    Content    `toml:"content"`
	Generation Generation `toml:"generation"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsmith/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// The asset root is created on a best-effort basis so inspection commands can
// run against roots that generators have not populated yet.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.AssetRoot) != "" {
		_ = os.MkdirAll(c.Paths.AssetRoot, 0o755)
	}
	return nil
}

// OutputDimensions returns the configured frame size for the active output format.
func (c *Config) OutputDimensions() Dimensions {
	if c.Video.Format == FormatLong {
		return c.Video.LongForm
	}
	return c.Video.ShortForm
}

// DurationTolerance returns the clamp threshold for probed clip durations.
func (c *Config) DurationTolerance() time.Duration {
	return time.Duration(c.Workflow.DurationToleranceMS) * time.Millisecond
}

// GenerationTimeout returns the per-scene generator hook timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
