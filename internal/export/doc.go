// Package export moves finished renders out of staging: the composited
// artifact lands in the configured output directory under its final name,
// and a JPEG thumbnail is grabbed from an early frame. Thumbnail failures
// never fail the run.
package export
