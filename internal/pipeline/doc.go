// Package pipeline drives a run through the assembly stages in order:
// resolve assets, build the timeline, synchronize captions, composite, and
// export. The runner is one-shot and sequential; every stage transition is
// persisted on the run before the next stage begins, so an interrupted
// process leaves an accurate record of how far the run got.
package pipeline
