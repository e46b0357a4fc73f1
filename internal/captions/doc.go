// Package captions turns per-scene narration text into timed caption spans.
// Text is NFC-normalized, split into word chunks, and each chunk gets a
// share of its scene's timeline window proportional to its word count, so
// longer phrases stay on screen longer.
package captions
