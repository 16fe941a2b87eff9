// Package config loads, normalizes, and validates scrollreel's TOML
// configuration.
//
// Load searches an explicit path, SCROLLREEL_CONFIG, then the user config
// directory, applies Default values, expands "~" in paths, and rejects
// settings the daemon cannot run with. CreateSample writes the embedded
// sample_config.toml for `scrollreel config init`.
package config
