// Package compositor renders a timeline into a single video file with one
// ffmpeg invocation. The filter graph scales and pads every scene clip to
// the target frame, conforms the frame rate, freeze-frames clips that run
// short of their scene window, chains crossfades between scenes, mixes
// voiceover, background music, and sound effects, and burns caption spans
// with drawtext.
//
// Graph construction is pure and separately testable; only Execute touches
// ffmpeg and the filesystem. Output is written to a staging temp file and
// renamed into place so a failed render never leaves a partial artifact at
// the final path.
package compositor
