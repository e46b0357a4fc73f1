package captions

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"reelsmith/internal/assets"
	"reelsmith/internal/config"
	"reelsmith/internal/timeline"
)

// Span is one caption: its text and the window it is visible in.
type Span struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Scene int     `json:"scene"`
}

// Decode restores caption spans persisted on a run.
func Decode(raw string) ([]Span, error) {
	var spans []Span
	if err := json.Unmarshal([]byte(raw), &spans); err != nil {
		return nil, fmt.Errorf("decode caption spans: %w", err)
	}
	return spans, nil
}

// Encode serializes spans for persistence on a run.
func Encode(spans []Span) (string, error) {
	data, err := json.Marshal(spans)
	if err != nil {
		return "", fmt.Errorf("encode caption spans: %w", err)
	}
	return string(data), nil
}

// Synchronize produces timed caption spans for every scene with narration
// text. Scenes without text contribute nothing; captions disabled in config
// yields an empty sequence. Spans never overlap and stay inside their
// scene's timeline window.
func Synchronize(resolved assets.Resolved, tl timeline.Timeline, cfg *config.Config) []Span {
	if !cfg.Content.Captions.Enabled {
		return nil
	}
	chunkSize := cfg.Content.Captions.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}

	windows := make(map[int]timeline.Entry)
	for _, entry := range tl.VideoEntries() {
		windows[entry.Scene] = entry
	}

	var spans []Span
	for _, scene := range resolved.Scenes {
		window, ok := windows[scene.Index]
		if !ok {
			continue
		}
		spans = append(spans, sceneSpans(scene, window, chunkSize)...)
	}
	return spans
}

func sceneSpans(scene assets.Scene, window timeline.Entry, chunkSize int) []Span {
	words := strings.Fields(norm.NFC.String(scene.Caption))
	if len(words) == 0 {
		return nil
	}

	chunks := chunkWords(words, chunkSize)
	total := len(words)

	spans := make([]Span, 0, len(chunks))
	cursor := window.Start
	for i, chunk := range chunks {
		share := window.Duration * float64(len(chunk)) / float64(total)
		end := cursor + share
		if i == len(chunks)-1 {
			// Absorb float drift so the last span closes exactly on the window.
			end = window.End()
		}
		spans = append(spans, Span{
			Text:  strings.Join(chunk, " "),
			Start: cursor,
			End:   end,
			Scene: scene.Index,
		})
		cursor = end
	}
	return spans
}

func chunkWords(words []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, words[start:end])
	}
	return chunks
}
