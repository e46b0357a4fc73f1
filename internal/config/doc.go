// Package config loads, normalizes, and validates reelsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and the assembly pipeline need: asset and output directories, render
// geometry, transition and caption styling, music mixing policy, and the
// external generator hook used in live mode.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. No
// component reads ambient global configuration; the loaded value is threaded
// explicitly into each stage.
package config
