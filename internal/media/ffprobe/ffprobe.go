package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FrameRate  string `json:"r_frame_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// HasVideo reports whether any video stream is present.
func (r Result) HasVideo() bool {
	return r.firstStream("video") != nil
}

// HasAudio reports whether any audio stream is present.
func (r Result) HasAudio() bool {
	return r.firstStream("audio") != nil
}

// Dimensions returns the width and height of the first video stream, or
// zeros when the container has no video.
func (r Result) Dimensions() (int, int) {
	if stream := r.firstStream("video"); stream != nil {
		return stream.Width, stream.Height
	}
	return 0, 0
}

// DurationSeconds returns the container duration in seconds. It falls back
// to the longest per-stream duration when the container omits one, and
// returns 0 when nothing reports a duration.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if d := parseFloat(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

func (r Result) firstStream(codecType string) *Stream {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, codecType) {
			return &r.Streams[i]
		}
	}
	return nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
