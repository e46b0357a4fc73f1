// Package services provides the shared error taxonomy and context annotation
// helpers used by every pipeline stage.
//
// Stage failures are wrapped with a sentinel marker (validation, configuration,
// external tool, ...) plus the stage name and operation so the pipeline runner
// and the CLI can surface what failed and where without string matching.
package services
