package captions

import (
	"math"
	"reflect"
	"testing"

	"reelsmith/internal/assets"
	"reelsmith/internal/config"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/timeline"
)

func fixture(caption string, duration float64) (assets.Resolved, timeline.Timeline) {
	resolved := assets.Resolved{
		Scenes: []assets.Scene{{
			Index:         1,
			AnimationFile: "a.mp4",
			VoiceoverFile: "v.mp3",
			Duration:      duration,
			Caption:       caption,
		}},
	}
	tl := timeline.Timeline{
		Entries: []timeline.Entry{
			{Media: "a.mp4", Start: 0, Duration: duration, Layer: timeline.LayerVideo, Scene: 1},
			{Media: "v.mp3", Start: 0, Duration: duration, Layer: timeline.LayerAudio, Scene: 1},
		},
		Total: duration,
	}
	return resolved, tl
}

func captionConfig(t *testing.T, enabled bool, chunkSize int) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithCaptions(chunkSize))
	cfg.Content.Captions.Enabled = enabled
	return cfg
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSynchronizeChunksProportionally(t *testing.T) {
	// 12 words, chunks of 4: three equal spans over a 6s window.
	resolved, tl := fixture("one two three four five six seven eight nine ten eleven twelve", 6)

	spans := Synchronize(resolved, tl, captionConfig(t, true, 4))
	if len(spans) != 3 {
		t.Fatalf("len(spans) = %d, want 3", len(spans))
	}
	wantStarts := []float64{0, 2, 4}
	for i, span := range spans {
		if !almostEqual(span.Start, wantStarts[i]) {
			t.Errorf("span %d start = %v, want %v", i, span.Start, wantStarts[i])
		}
	}
	if !almostEqual(spans[2].End, 6) {
		t.Errorf("last span end = %v, want window end 6", spans[2].End)
	}
	if spans[0].Text != "one two three four" {
		t.Errorf("first span text = %q", spans[0].Text)
	}
}

func TestSynchronizeUnevenFinalChunk(t *testing.T) {
	// 5 words in chunks of 3: first span gets 3/5 of the window.
	resolved, tl := fixture("alpha beta gamma delta epsilon", 10)

	spans := Synchronize(resolved, tl, captionConfig(t, true, 3))
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2", len(spans))
	}
	if !almostEqual(spans[0].End, 6) {
		t.Errorf("first span end = %v, want 6", spans[0].End)
	}
	if spans[1].Text != "delta epsilon" {
		t.Errorf("second span text = %q", spans[1].Text)
	}
	if !almostEqual(spans[1].End, 10) {
		t.Errorf("second span end = %v, want 10", spans[1].End)
	}
}

func TestSynchronizeSpansDoNotOverlap(t *testing.T) {
	resolved, tl := fixture("a b c d e f g h i j k", 7.3)

	spans := Synchronize(resolved, tl, captionConfig(t, true, 2))
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End-1e-9 {
			t.Errorf("span %d starts at %v before previous end %v", i, spans[i].Start, spans[i-1].End)
		}
	}
}

func TestSynchronizeDisabled(t *testing.T) {
	resolved, tl := fixture("some narration text", 5)
	if spans := Synchronize(resolved, tl, captionConfig(t, false, 8)); spans != nil {
		t.Errorf("spans = %v, want nil when disabled", spans)
	}
}

func TestSynchronizeEmptyCaption(t *testing.T) {
	resolved, tl := fixture("", 5)
	if spans := Synchronize(resolved, tl, captionConfig(t, true, 8)); len(spans) != 0 {
		t.Errorf("spans = %v, want none for empty narration", spans)
	}
}

func TestSynchronizeNormalizesUnicode(t *testing.T) {
	// "é" as combining sequence (e + U+0301) normalizes to the precomposed form.
	resolved, tl := fixture("café time", 4)

	spans := Synchronize(resolved, tl, captionConfig(t, true, 8))
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	if spans[0].Text != "café time" {
		t.Errorf("text = %q, want NFC-normalized form", spans[0].Text)
	}
}

func TestSynchronizeDeterministic(t *testing.T) {
	resolved, tl := fixture("repeatable caption sync output every time", 9)
	cfg := captionConfig(t, true, 2)

	first := Synchronize(resolved, tl, cfg)
	second := Synchronize(resolved, tl, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different spans")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	spans := []Span{{Text: "hello", Start: 0, End: 2, Scene: 1}}
	encoded, err := Encode(spans)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(spans, decoded) {
		t.Errorf("round trip mismatch: %+v vs %+v", spans, decoded)
	}
}
