package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the optional narration manifest file at the asset root.
const ManifestName = "script.yaml"

// Manifest carries the narration script for a run: the topic and one entry
// per scene, in scene order. Live mode requires it (the generator needs to
// know what to produce); test mode uses it only for caption text.
type Manifest struct {
	Topic  string          `yaml:"topic"`
	Scenes []ManifestScene `yaml:"scenes"`
}

// ManifestScene is one scene's narration entry.
type ManifestScene struct {
	Narration string `yaml:"narration"`
	Prompt    string `yaml:"prompt,omitempty"`
}

// LoadManifest reads script.yaml from the asset root. A missing file
// returns (nil, nil); callers decide whether that is acceptable.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &manifest, nil
}

// Narration returns the narration text for a 1-based scene index, or empty
// when the manifest has no entry for it.
func (m *Manifest) Narration(index int) string {
	if m == nil || index < 1 || index > len(m.Scenes) {
		return ""
	}
	return m.Scenes[index-1].Narration
}
