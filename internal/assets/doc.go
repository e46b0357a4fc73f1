// Package assets locates and resolves the media files a run is assembled
// from: per-scene animation clips, per-scene voiceover clips, and global
// background music and sound-effect files under a conventional directory
// layout rooted at the run's asset root.
//
// The Locator answers "where is scene N's animation" style questions and is
// read-only and idempotent. A Source turns a whole asset root into resolved
// Scenes: PrecomputedSource validates files that are already in place, while
// GeneratingSource first invokes an external generator command per scene and
// then validates what it produced.
package assets
