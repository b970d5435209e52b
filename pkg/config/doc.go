// Package config handles configuration management for repatch.
// It loads configuration in layers from the embedded defaults, an optional
// TOML or YAML file in the working root, REPATCH_ environment variables and
// command-line overrides, then validates the resulting target list.
package config
