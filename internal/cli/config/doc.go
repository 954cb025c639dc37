// Package config provides CLI configuration for trainly-cli.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.trainly/cli.yaml) and defaults
//   - loader.go: loading, merging, editing and saving
//   - validate.go: configuration validation
//
// Priority, highest first: command-line flags, TRAINLY_* environment
// variables, the config file, built-in defaults.
package config
