// Package logging constructs the slog loggers used across reelsmith.
//
// It offers a console handler for interactive runs, a JSON handler for
// machine-readable logs, context helpers that stamp run and stage identifiers
// onto every record, and a retention sweep for the log directory. Components
// receive loggers from their constructors; nothing logs through a package
// global.
package logging
