// Package timeline computes when each resolved asset plays in the final
// video. Scenes are laid out back to back with crossfade overlap, the
// background music track spans the whole output plus a configurable buffer,
// and sound effects land on successive scene starts.
//
// The computation is pure: identical inputs always produce an identical
// timeline, and nothing here touches the filesystem.
package timeline
