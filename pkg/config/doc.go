// Package config loads, defaults, and validates the Meridian
// configuration. Configuration comes from a YAML file with MERIDIAN_*
// environment variable overrides on top; an invalid configuration is
// rejected at startup, never discovered mid-run.
package config
