package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// Sentinel errors returned by the locator.
var (
	// ErrNotFound indicates a required asset has no matching file.
	ErrNotFound = errors.New("asset not found")
	// ErrAmbiguous indicates a per-scene pattern matched more than one file.
	ErrAmbiguous = errors.New("asset pattern is ambiguous")
)

// Kind identifies a category of media asset.
type Kind string

const (
	KindAnimation Kind = "animation"
	KindVoiceover Kind = "voiceover"
	KindMusic     Kind = "music"
	KindSFX       Kind = "sfx"
)

// Subdirectory and filename conventions under the asset root.
const (
	animationsDir = "animations"
	voiceoverDir  = "voiceover"
	audioDir      = "audio"
)

// Scene is one resolved scene: its clip, its narration audio, and the
// duration the narration gives it. Immutable once resolved.
type Scene struct {
	Index         int     `json:"index"`
	AnimationFile string  `json:"animation_file"`
	VoiceoverFile string  `json:"voiceover_file"`
	Duration      float64 `json:"duration"`
	Caption       string  `json:"caption,omitempty"`
}

// Locator resolves asset paths under a single asset root.
type Locator struct {
	root string
}

// NewLocator returns a Locator rooted at the given directory.
func NewLocator(root string) *Locator {
	return &Locator{root: root}
}

// Root returns the asset root directory.
func (l *Locator) Root() string {
	return l.root
}

// ScenePath resolves the single file for a per-scene kind and 1-based index.
// Exactly one file must match the naming convention.
func (l *Locator) ScenePath(kind Kind, index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("scene index %d: must be 1-based", index)
	}

	var pattern string
	switch kind {
	case KindAnimation:
		pattern = filepath.Join(l.root, animationsDir, fmt.Sprintf("scene_%03d.*", index))
	case KindVoiceover:
		pattern = filepath.Join(l.root, voiceoverDir, fmt.Sprintf("voiceover_part_%03d.*", index))
	default:
		return "", fmt.Errorf("kind %q is not per-scene", kind)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s scene %d (%s): %w", kind, index, pattern, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%s scene %d matched %d files (%v): %w", kind, index, len(matches), matches, ErrAmbiguous)
	}
}

// MusicFiles returns background music files under <root>/audio, sorted
// lexicographically. When required is set an empty result is ErrNotFound;
// otherwise an empty list is returned without error.
func (l *Locator) MusicFiles(required bool) ([]string, error) {
	matches, err := l.globAudio("background_music_*.*")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 && required {
		return nil, fmt.Errorf("background music under %s: %w", filepath.Join(l.root, audioDir), ErrNotFound)
	}
	return matches, nil
}

// SFXFiles returns sound-effect files under <root>/audio, sorted
// lexicographically. Absence is not an error.
func (l *Locator) SFXFiles() ([]string, error) {
	return l.globAudio("sfx_*.*")
}

// SceneCount reports how many scene animation clips exist under the root.
func (l *Locator) SceneCount() (int, error) {
	matches, err := filepath.Glob(filepath.Join(l.root, animationsDir, "scene_*.*"))
	if err != nil {
		return 0, fmt.Errorf("count scenes: %w", err)
	}
	return len(matches), nil
}

func (l *Locator) globAudio(pattern string) ([]string, error) {
	full := filepath.Join(l.root, audioDir, pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", full, err)
	}
	sort.Strings(matches)
	return matches, nil
}
