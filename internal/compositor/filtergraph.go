package compositor

import (
	"errors"
	"fmt"
	"strings"

	"reelsmith/internal/captions"
	"reelsmith/internal/config"
	"reelsmith/internal/timeline"
)

// Sentinel errors for render failures the driver tells apart.
var (
	// ErrCodec indicates an input ffmpeg could not decode or a codec it
	// could not produce.
	ErrCodec = errors.New("unsupported or corrupt media")
	// ErrMusicMissing indicates required background music was absent at
	// render time.
	ErrMusicMissing = errors.New("background music required but missing")
)

// Input is one -i argument in render order.
type Input struct {
	Path string
	// Loop applies -stream_loop -1 so a short music bed covers the
	// whole output.
	Loop bool
}

// RenderPlan is a fully computed ffmpeg invocation, minus the binary and
// output path.
type RenderPlan struct {
	Inputs        []Input
	FilterComplex string
	VideoLabel    string
	AudioLabel    string
	Duration      float64
	FPS           int
}

// BuildPlan derives the single-pass filter graph for a timeline. The
// caption spans may be empty; captions then contribute nothing to the graph.
func BuildPlan(tl timeline.Timeline, spans []captions.Span, cfg *config.Config) (*RenderPlan, error) {
	video := tl.VideoEntries()
	if len(video) == 0 {
		return nil, timeline.ErrEmptyTimeline
	}
	if tl.Music == nil && cfg.Content.Music.Required {
		return nil, ErrMusicMissing
	}

	plan := &RenderPlan{Duration: tl.Total, FPS: cfg.Video.FPS}
	dims := cfg.OutputDimensions()

	var graph strings.Builder

	// Video: conform every clip to the frame, freeze-frame short clips,
	// trim long ones to the scene window.
	for i, entry := range video {
		plan.Inputs = append(plan.Inputs, Input{Path: entry.Media})
		fmt.Fprintf(&graph,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,tpad=stop_mode=clone:stop_duration=%.3f,trim=duration=%.3f,setpts=PTS-STARTPTS[v%d];",
			i, dims.Width, dims.Height, dims.Width, dims.Height, cfg.Video.FPS,
			entry.Duration, entry.Duration, i)
	}

	videoLabel := "[v0]"
	for i := 1; i < len(video); i++ {
		next := fmt.Sprintf("[vx%d]", i)
		fmt.Fprintf(&graph, "%s[v%d]xfade=transition=%s:duration=%.3f:offset=%.3f%s;",
			videoLabel, i, transitionType(cfg), tl.TransitionTime, video[i].Start, next)
		videoLabel = next
	}

	videoLabel = appendCaptions(&graph, videoLabel, spans, cfg)

	// Audio: voiceovers delayed to their offsets, SFX likewise, music
	// looped and trimmed to the full span, all mixed in one amix.
	var mixLabels []string
	for _, entry := range tl.SceneAudio() {
		idx := len(plan.Inputs)
		plan.Inputs = append(plan.Inputs, Input{Path: entry.Media})
		label := fmt.Sprintf("[vo%d]", entry.Scene)
		delay := toMillis(entry.Start)
		fmt.Fprintf(&graph, "[%d:a]adelay=%d|%d%s;", idx, delay, delay, label)
		mixLabels = append(mixLabels, label)
	}
	for i, entry := range tl.GlobalAudio() {
		idx := len(plan.Inputs)
		plan.Inputs = append(plan.Inputs, Input{Path: entry.Media})
		label := fmt.Sprintf("[sfx%d]", i)
		delay := toMillis(entry.Start)
		fmt.Fprintf(&graph, "[%d:a]adelay=%d|%d%s;", idx, delay, delay, label)
		mixLabels = append(mixLabels, label)
	}
	if tl.Music != nil {
		idx := len(plan.Inputs)
		plan.Inputs = append(plan.Inputs, Input{Path: tl.Music.Media, Loop: true})
		fmt.Fprintf(&graph, "[%d:a]atrim=duration=%.3f,volume=%.3f[music];",
			idx, tl.Music.Duration, tl.Music.Volume)
		mixLabels = append(mixLabels, "[music]")
	}

	switch len(mixLabels) {
	case 0:
		return nil, fmt.Errorf("timeline has no audio entries: %w", timeline.ErrEmptyTimeline)
	case 1:
		fmt.Fprintf(&graph, "%sanull[aout]", mixLabels[0])
	default:
		// duration=longest keeps late-starting voiceovers and the music bed
		// alive past the first stream's end; the -t clamp bounds the result.
		fmt.Fprintf(&graph, "%samix=inputs=%d:duration=longest:normalize=0[aout]",
			strings.Join(mixLabels, ""), len(mixLabels))
	}

	plan.FilterComplex = graph.String()
	plan.VideoLabel = videoLabel
	plan.AudioLabel = "[aout]"
	return plan, nil
}

// Args assembles the complete ffmpeg argument list for the plan.
func (p *RenderPlan) Args(output string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, input := range p.Inputs {
		if input.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args, "-i", input.Path)
	}
	args = append(args,
		"-filter_complex", p.FilterComplex,
		"-map", p.VideoLabel,
		"-map", p.AudioLabel,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-r", fmt.Sprintf("%d", p.FPS),
		"-t", fmt.Sprintf("%.3f", p.Duration),
		"-movflags", "+faststart",
		output,
	)
	return args
}

func appendCaptions(graph *strings.Builder, videoLabel string, spans []captions.Span, cfg *config.Config) string {
	if len(spans) == 0 {
		return videoLabel
	}

	style := cfg.Video.Captions
	fontArg := "font=" + escapeDrawtext(style.Font)
	if strings.ContainsRune(style.Font, '/') {
		fontArg = "fontfile=" + escapeDrawtext(style.Font)
	}

	var filters []string
	for _, span := range spans {
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':%s:fontsize=%d:fontcolor=%s:bordercolor=%s:borderw=%d:x=(w-text_w)/2:y=h-text_h-h/8:enable='between(t,%.3f,%.3f)'",
			escapeDrawtext(span.Text), fontArg, style.Size, style.Color,
			style.StrokeColor, style.StrokeWidth, span.Start, span.End))
	}

	fmt.Fprintf(graph, "%s%s[vcap];", videoLabel, strings.Join(filters, ","))
	return "[vcap]"
}

// transitionType maps the configured transition name onto an xfade
// transition. The config speaks in terms of "crossfade"; ffmpeg calls the
// same effect "fade". Anything else passes through as an xfade name.
func transitionType(cfg *config.Config) string {
	switch t := strings.TrimSpace(cfg.Video.Transitions.Default); t {
	case "", "crossfade":
		return "fade"
	default:
		return t
	}
}

func toMillis(seconds float64) int {
	return int(seconds*1000 + 0.5)
}

// escapeDrawtext escapes the characters drawtext treats specially inside a
// filter_complex string. The text is emitted inside a single-quoted section,
// where a quote cannot be escaped in place: each apostrophe closes the
// section, inserts an escaped quote, and reopens it.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `'\''`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
		`[`, `\[`,
		`]`, `\]`,
		`;`, `\;`,
	)
	return replacer.Replace(text)
}
