// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The asset resolver uses it to measure scene clip and voiceover durations
// and to confirm that located files actually carry the streams the
// composition step expects.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
package ffprobe
