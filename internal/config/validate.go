package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration values that cannot drive a render.
func (c *Config) Validate() error {
	var problems []string

	if c.Video.FPS <= 0 {
		problems = append(problems, fmt.Sprintf("video.fps must be positive, got %d", c.Video.FPS))
	}
	if c.Video.Format != FormatShort && c.Video.Format != FormatLong {
		problems = append(problems, fmt.Sprintf("video.format must be %q or %q, got %q", FormatShort, FormatLong, c.Video.Format))
	}
	for _, dims := range []struct {
		name string
		d    Dimensions
	}{
		{"video.short_form", c.Video.ShortForm},
		{"video.long_form", c.Video.LongForm},
	} {
		if dims.d.Width <= 0 || dims.d.Height <= 0 {
			problems = append(problems, fmt.Sprintf("%s dimensions must be positive, got %dx%d", dims.name, dims.d.Width, dims.d.Height))
		}
	}
	if c.Video.Transitions.Duration < 0 {
		problems = append(problems, fmt.Sprintf("video.transitions.duration must not be negative, got %g", c.Video.Transitions.Duration))
	}
	if c.Video.Captions.Size <= 0 {
		problems = append(problems, fmt.Sprintf("video.captions.size must be positive, got %d", c.Video.Captions.Size))
	}
	if c.Video.Captions.StrokeWidth < 0 {
		problems = append(problems, fmt.Sprintf("video.captions.stroke_width must not be negative, got %d", c.Video.Captions.StrokeWidth))
	}
	if c.Content.Music.Volume < 0 || c.Content.Music.Volume > 1 {
		problems = append(problems, fmt.Sprintf("content.music.volume must be within [0, 1], got %g", c.Content.Music.Volume))
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir must not be empty")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
