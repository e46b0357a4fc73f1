package timeline

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"reelsmith/internal/assets"
	"reelsmith/internal/config"
)

func sceneFixture(durations ...float64) assets.Resolved {
	var resolved assets.Resolved
	for i, d := range durations {
		resolved.Scenes = append(resolved.Scenes, assets.Scene{
			Index:         i + 1,
			AnimationFile: "a.mp4",
			VoiceoverFile: "v.mp3",
			Duration:      d,
		})
	}
	return resolved
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildTotalWithCrossfades(t *testing.T) {
	cfg := config.Default()
	cfg.Video.Transitions.Duration = 0.5

	tl, err := Build(sceneFixture(4, 5, 3), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !almostEqual(tl.Total, 11.0) {
		t.Fatalf("total = %v, want 11.0", tl.Total)
	}

	video := tl.VideoEntries()
	if len(video) != 3 {
		t.Fatalf("video entries = %d, want 3", len(video))
	}
	wantStarts := []float64{0, 3.5, 8.0}
	for i, entry := range video {
		if !almostEqual(entry.Start, wantStarts[i]) {
			t.Errorf("scene %d start = %v, want %v", i+1, entry.Start, wantStarts[i])
		}
	}

	audio := tl.SceneAudio()
	if len(audio) != 3 {
		t.Fatalf("voiceover entries = %d, want 3", len(audio))
	}
	for i := range audio {
		if !almostEqual(audio[i].Start, video[i].Start) {
			t.Errorf("voiceover %d start %v != video start %v", i+1, audio[i].Start, video[i].Start)
		}
	}
}

func TestBuildSingleSceneHasNoTransition(t *testing.T) {
	cfg := config.Default()
	cfg.Video.Transitions.Duration = 0.5

	tl, err := Build(sceneFixture(6), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !almostEqual(tl.Total, 6.0) {
		t.Errorf("total = %v, want 6.0", tl.Total)
	}
	if tl.TransitionTime != 0 {
		t.Errorf("transition time = %v, want 0", tl.TransitionTime)
	}
}

func TestBuildEmptyScenes(t *testing.T) {
	_, err := Build(assets.Resolved{}, config.Default())
	if !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("err = %v, want ErrEmptyTimeline", err)
	}
}

func TestBuildMusicSpansTotalPlusBuffer(t *testing.T) {
	cfg := config.Default()
	cfg.Video.Transitions.Duration = 0
	cfg.Content.Music.Volume = 0.25
	cfg.Content.Music.DurationBuffer = 2.0

	resolved := sceneFixture(4, 4)
	resolved.MusicFiles = []string{"music_a.mp3", "music_b.mp3"}

	tl, err := Build(resolved, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Music == nil {
		t.Fatal("expected music track")
	}
	if tl.Music.Media != "music_a.mp3" {
		t.Errorf("music media = %q, want first file", tl.Music.Media)
	}
	if tl.Music.Start != 0 || !almostEqual(tl.Music.Duration, 10.0) {
		t.Errorf("music span = (%v, %v), want (0, 10)", tl.Music.Start, tl.Music.Duration)
	}
	if tl.Music.Volume != 0.25 {
		t.Errorf("music volume = %v", tl.Music.Volume)
	}
}

func TestBuildWithoutMusic(t *testing.T) {
	tl, err := Build(sceneFixture(3), config.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Music != nil {
		t.Errorf("expected no music track, got %+v", tl.Music)
	}
}

func TestBuildSFXLandOnSceneStarts(t *testing.T) {
	cfg := config.Default()
	cfg.Video.Transitions.Duration = 1

	resolved := sceneFixture(5, 5)
	resolved.SFXFiles = []string{"sfx_a.mp3", "sfx_b.mp3", "sfx_c.mp3"}

	tl, err := Build(resolved, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sfx := tl.GlobalAudio()
	if len(sfx) != 2 {
		t.Fatalf("sfx entries = %d, want 2 (stops when scenes run out)", len(sfx))
	}
	if !almostEqual(sfx[0].Start, 0) || !almostEqual(sfx[1].Start, 4) {
		t.Errorf("sfx starts = %v, %v", sfx[0].Start, sfx[1].Start)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := config.Default()
	resolved := sceneFixture(2.5, 3.5, 4.5)
	resolved.MusicFiles = []string{"m.mp3"}
	resolved.SFXFiles = []string{"s.mp3"}

	first, err := Build(resolved, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(resolved, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different timelines")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tl, err := Build(sceneFixture(4, 5), config.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	encoded, err := tl.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(tl, decoded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", tl, decoded)
	}
}
