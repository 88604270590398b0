// Package config provides environment-based configuration.
//
// Loads hub and server settings from environment variables with defaults,
// validating durations and limits before the hub is constructed.
package config
