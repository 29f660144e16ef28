// Package config loads, normalizes, and validates mandelmovie configuration.
//
// Configuration is read from TOML (by default ~/.config/mandelmovie/config.toml
// or ./mandelmovie.toml) on top of the repository defaults. Paths are expanded
// to absolute form during normalization, and Validate rejects settings that
// would make a render fail part-way through, such as a thread count outside
// 1..20 or non-positive image dimensions. Command-line flags are applied by
// the CLI after Load and re-validated there.
//
// Add new settings here first, with a default, a normalization rule and a
// validation rule, before wiring them into commands.
package config
