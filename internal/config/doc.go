// Package config loads the scanner configuration from defaults, an optional
// YAML file and TILECODE_* environment variables.
package config
