package timeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"reelsmith/internal/assets"
	"reelsmith/internal/config"
)

// ErrEmptyTimeline indicates no scenes were available to place.
var ErrEmptyTimeline = errors.New("timeline has no scenes")

// Layer identifies which track an entry belongs to.
type Layer string

const (
	LayerVideo Layer = "video"
	LayerAudio Layer = "audio"
)

// Entry places one media file on the timeline.
type Entry struct {
	Media    string  `json:"media"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Layer    Layer   `json:"layer"`
	// Scene is the 1-based scene index, 0 for global audio such as SFX.
	Scene int `json:"scene,omitempty"`
}

// End returns the entry's end time on the timeline.
func (e Entry) End() float64 {
	return e.Start + e.Duration
}

// MusicTrack is the background music bed spanning the whole output.
type MusicTrack struct {
	Media    string  `json:"media"`
	Volume   float64 `json:"volume"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Timeline is the full placement plan the compositor renders from.
type Timeline struct {
	Entries        []Entry     `json:"entries"`
	Music          *MusicTrack `json:"music,omitempty"`
	Total          float64     `json:"total"`
	Transition     string      `json:"transition"`
	TransitionTime float64     `json:"transition_time"`
}

// Decode restores a timeline persisted on a run.
func Decode(raw string) (Timeline, error) {
	var tl Timeline
	if err := json.Unmarshal([]byte(raw), &tl); err != nil {
		return Timeline{}, fmt.Errorf("decode timeline: %w", err)
	}
	return tl, nil
}

// Encode serializes a timeline for persistence on a run.
func (t Timeline) Encode() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}
	return string(data), nil
}

// VideoEntries returns the video-layer entries in timeline order.
func (t Timeline) VideoEntries() []Entry {
	var entries []Entry
	for _, entry := range t.Entries {
		if entry.Layer == LayerVideo {
			entries = append(entries, entry)
		}
	}
	return entries
}

// SceneAudio returns the per-scene voiceover entries in timeline order.
func (t Timeline) SceneAudio() []Entry {
	var entries []Entry
	for _, entry := range t.Entries {
		if entry.Layer == LayerAudio && entry.Scene > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

// GlobalAudio returns sound-effect entries in timeline order.
func (t Timeline) GlobalAudio() []Entry {
	var entries []Entry
	for _, entry := range t.Entries {
		if entry.Layer == LayerAudio && entry.Scene == 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Build lays out the resolved assets on a timeline. Each scene contributes a
// video entry and a voiceover entry at the same offset; consecutive scenes
// overlap by the transition duration so crossfades consume time from both
// sides. Total duration is the last scene's end, which works out to
// sum(durations) - (n-1)*transition.
func Build(resolved assets.Resolved, cfg *config.Config) (Timeline, error) {
	scenes := resolved.Scenes
	if len(scenes) == 0 {
		return Timeline{}, ErrEmptyTimeline
	}

	transition := cfg.Video.Transitions.Duration
	if transition < 0 {
		transition = 0
	}
	if len(scenes) == 1 {
		transition = 0
	}

	tl := Timeline{
		Transition:     cfg.Video.Transitions.Default,
		TransitionTime: transition,
	}

	offset := 0.0
	for i, scene := range scenes {
		tl.Entries = append(tl.Entries,
			Entry{Media: scene.AnimationFile, Start: offset, Duration: scene.Duration, Layer: LayerVideo, Scene: scene.Index},
			Entry{Media: scene.VoiceoverFile, Start: offset, Duration: scene.Duration, Layer: LayerAudio, Scene: scene.Index},
		)
		if i == len(scenes)-1 {
			tl.Total = offset + scene.Duration
		} else {
			advance := scene.Duration - transition
			if advance < 0 {
				advance = 0
			}
			offset += advance
		}
	}
	if tl.Total < 0 {
		tl.Total = 0
	}

	// SFX land on successive scene starts, stopping when either list runs out.
	videoStarts := tl.VideoEntries()
	for i, sfxFile := range resolved.SFXFiles {
		if i >= len(videoStarts) {
			break
		}
		tl.Entries = append(tl.Entries, Entry{
			Media:    sfxFile,
			Start:    videoStarts[i].Start,
			Duration: 0,
			Layer:    LayerAudio,
		})
	}

	if len(resolved.MusicFiles) > 0 {
		tl.Music = &MusicTrack{
			Media:    resolved.MusicFiles[0],
			Volume:   cfg.Content.Music.Volume,
			Start:    0,
			Duration: tl.Total + cfg.Content.Music.DurationBuffer,
		}
	}

	return tl, nil
}
